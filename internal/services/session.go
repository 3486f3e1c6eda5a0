package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"events-admin/internal/filter"
	"events-admin/internal/metrics"
	"events-admin/internal/models"
	"events-admin/internal/repository"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNoEditOpen        = errors.New("no event is being edited")
	ErrSaveInProgress    = errors.New("a save is already in progress")
	ErrRefreshInProgress = errors.New("a refresh is already in progress")
	ErrRefreshFailed     = errors.New("event saved but refresh failed")
)

// EventStore is the record store the session reads from and writes to
type EventStore interface {
	FetchAll(ctx context.Context, orderBy repository.OrderField, desc bool) ([]models.Event, error)
	UpdateByID(ctx context.Context, id int64, event *models.Event) error
}

// AuditLogger records operator actions
type AuditLogger interface {
	CreateAdminLog(ctx context.Context, entry *models.AdminLog) error
}

// SessionOptions configures every session created by a manager
type SessionOptions struct {
	Location *time.Location
	OrderBy  repository.OrderField
	Desc     bool
	Now      func() time.Time
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Audit    AuditLogger
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.OrderBy == "" {
		o.OrderBy = repository.OrderByStartValue
		o.Desc = true
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Session is the dashboard state of one operator: the last fetched event
// list, the live filter criteria and the open edit buffer.
type Session struct {
	operator string
	store    EventStore
	opts     SessionOptions
	log      *slog.Logger

	mu         sync.Mutex
	events     []models.Event
	loaded     bool
	loading    bool
	criteria   filter.Criteria
	edit       *EditBuffer
	lastActive time.Time
}

// NewSession creates an empty session for operator
func NewSession(operator string, store EventStore, opts SessionOptions) *Session {
	opts = opts.withDefaults()
	return &Session{
		operator:   operator,
		store:      store,
		opts:       opts,
		log:        opts.Logger.With("operator", operator),
		events:     []models.Event{},
		lastActive: opts.Now(),
	}
}

// Operator returns the name of the session owner
func (s *Session) Operator() string {
	return s.operator
}

func (s *Session) touch() {
	s.lastActive = s.opts.Now()
}

// LastActive returns the time of the last call into the session
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Refresh replaces the event list with a fresh fetch from the store.
// On failure the previous list is kept.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrRefreshInProgress
	}
	s.loading = true
	s.touch()
	s.mu.Unlock()

	events, err := s.store.FetchAll(ctx, s.opts.OrderBy, s.opts.Desc)
	if s.opts.Metrics != nil {
		s.opts.Metrics.StoreFetches.WithLabelValues(metrics.Outcome(err)).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.log.Error("Error fetching events", "error", err)
		return err
	}

	if events == nil {
		events = []models.Event{}
	}
	s.events = events
	s.loaded = true
	s.log.Info("Events fetched", "count", len(events))
	return nil
}

// EnsureLoaded fetches the list once if the session has never loaded it
func (s *Session) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}

// Loaded reports whether at least one fetch succeeded
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Loading reports whether a fetch is outstanding
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Events returns a copy of the last fetched list
func (s *Session) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Event returns one event of the last fetched list
func (s *Session) Event(id int64) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, fmt.Errorf("%w: %d", ErrEventNotFound, id)
}

// Filtered returns the events matching the current criteria
func (s *Session) Filtered() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	out := filter.Apply(s.events, s.criteria, s.opts.Location)
	if s.opts.Metrics != nil {
		s.opts.Metrics.FilterResults.Observe(float64(len(out)))
	}
	return out
}

// Criteria returns the current filter criteria
func (s *Session) Criteria() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// SetCriteria replaces the filter criteria
func (s *Session) SetCriteria(c filter.Criteria) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.criteria = c
	return nil
}

// SetCriterion changes a single criterion by name
func (s *Session) SetCriterion(name, value string) (filter.Criteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	next, err := s.criteria.With(name, value)
	if err != nil {
		return s.criteria, err
	}
	if err := next.Validate(); err != nil {
		return s.criteria, err
	}
	s.criteria = next
	return next, nil
}

// ClearCriteria resets every criterion to empty
func (s *Session) ClearCriteria() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.criteria = filter.Criteria{}
}

// Stats summarises the fetched and filtered lists
type Stats struct {
	Total         int             `json:"total"`
	Approved      int             `json:"approved"`
	Highlighted   int             `json:"highlighted"`
	Filtered      int             `json:"filtered"`
	ActiveFilters int             `json:"active_filters"`
	ApprovalRate  decimal.Decimal `json:"approval_rate"`
}

// Stats returns the dashboard counters
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	st := Stats{
		Total:         len(s.events),
		Filtered:      len(filter.Apply(s.events, s.criteria, s.opts.Location)),
		ActiveFilters: s.criteria.ActiveCount(),
		ApprovalRate:  decimal.Zero,
	}
	for i := range s.events {
		if s.events[i].IsApproved() {
			st.Approved++
		}
		if s.events[i].IsHighlighted() {
			st.Highlighted++
		}
	}
	if st.Total > 0 {
		st.ApprovalRate = decimal.NewFromInt(int64(st.Approved)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(st.Total))).
			Round(2)
	}
	return st
}

// OpenEdit seeds an edit buffer from the fetched copy of the event.
// Any buffer already open is discarded.
func (s *Session) OpenEdit(id int64) (EditView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.edit != nil && s.edit.saving {
		return s.edit.view(), ErrSaveInProgress
	}

	for _, e := range s.events {
		if e.ID == id {
			s.edit = newEditBuffer(e, s.opts.Location)
			return s.edit.view(), nil
		}
	}
	return EditView{}, fmt.Errorf("%w: %d", ErrEventNotFound, id)
}

// Edit returns the open edit buffer
func (s *Session) Edit() (EditView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.edit == nil {
		return EditView{}, ErrNoEditOpen
	}
	return s.edit.view(), nil
}

// SetEditField assigns a form value to the open edit buffer
func (s *Session) SetEditField(f Field, value string) (EditView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.edit == nil {
		return EditView{}, ErrNoEditOpen
	}
	if s.edit.saving {
		return s.edit.view(), ErrSaveInProgress
	}
	if err := s.edit.Set(f, value); err != nil {
		return s.edit.view(), err
	}
	return s.edit.view(), nil
}

// CancelEdit discards the open edit buffer
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.edit == nil {
		return ErrNoEditOpen
	}
	if s.edit.saving {
		return ErrSaveInProgress
	}
	s.edit = nil
	return nil
}

// SubmitEdit writes the whole edit buffer, with a fresh updated_at, to the
// store. On success the buffer is closed and the list re-fetched; a failed
// re-fetch is reported as ErrRefreshFailed. On a failed save the buffer stays
// open, unchanged, with the error message set, and the list is untouched.
func (s *Session) SubmitEdit(ctx context.Context) (EditView, error) {
	s.mu.Lock()
	s.touch()
	b := s.edit
	if b == nil {
		s.mu.Unlock()
		return EditView{}, ErrNoEditOpen
	}
	if b.saving {
		view := b.view()
		s.mu.Unlock()
		return view, ErrSaveInProgress
	}
	if err := b.validate(); err != nil {
		b.errMsg = err.Error()
		view := b.view()
		s.mu.Unlock()
		return view, err
	}

	b.saving = true
	b.errMsg = ""
	payload := b.draft
	now := s.opts.Now().UTC()
	payload.UpdatedAt = &now
	id := b.EventID()
	s.mu.Unlock()

	err := s.store.UpdateByID(ctx, id, &payload)
	if s.opts.Metrics != nil {
		s.opts.Metrics.StoreUpdates.WithLabelValues(metrics.Outcome(err)).Inc()
	}

	s.mu.Lock()
	b.saving = false
	if err != nil {
		b.errMsg = err.Error()
		view := b.view()
		s.mu.Unlock()
		s.log.Error("Failed to save event", "event_id", id, "error", err)
		return view, err
	}

	view := b.view()
	view.Saving = false
	if s.edit == b {
		s.edit = nil
	}
	s.mu.Unlock()

	s.log.Info("Event saved", "event_id", id, "changed", view.Changed)
	s.recordUpdate(ctx, id, view.Changed)

	if err := s.Refresh(ctx); err != nil {
		return view, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return view, nil
}

func (s *Session) recordUpdate(ctx context.Context, id int64, changed []Field) {
	if s.opts.Audit == nil {
		return
	}

	names := make([]string, 0, len(changed))
	for _, f := range changed {
		names = append(names, string(f))
	}

	entry := &models.AdminLog{
		Operator:     s.operator,
		Action:       models.AdminActionUpdateEvent,
		ResourceType: "EVENT",
		ResourceID:   &id,
		Details:      models.JSONB{"changed": names},
	}
	if err := s.opts.Audit.CreateAdminLog(ctx, entry); err != nil {
		s.log.Warn("Failed to write admin log", "event_id", id, "error", err)
	}
}
