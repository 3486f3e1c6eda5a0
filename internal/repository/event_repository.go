package repository

import (
	"context"
	"errors"
	"fmt"

	"events-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderField names a column the event list may be ordered by
type OrderField string

const (
	OrderByStartValue OrderField = "start_value"
	OrderByEndValue   OrderField = "end_value"
	OrderByCreatedAt  OrderField = "created_at"
	OrderByUpdatedAt  OrderField = "updated_at"
	OrderByID         OrderField = "id"
)

var ErrEventNotFound = errors.New("event not found")

// StoreError wraps any failure of the events table as one opaque error
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValid reports whether f is one of the orderable columns
func (f OrderField) IsValid() bool {
	switch f {
	case OrderByStartValue, OrderByEndValue, OrderByCreatedAt, OrderByUpdatedAt, OrderByID:
		return true
	}
	return false
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FetchAll retrieves every event ordered by the given column
func (r *EventRepository) FetchAll(ctx context.Context, orderBy OrderField, desc bool) ([]models.Event, error) {
	if !orderBy.IsValid() {
		return nil, &StoreError{Op: "fetch events", Err: fmt.Errorf("unsupported order column %q", orderBy)}
	}

	var events []models.Event
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(orderBy)}, Desc: desc}).
		Find(&events).Error
	if err != nil {
		return nil, &StoreError{Op: "fetch events", Err: err}
	}

	return events, nil
}

// UpdateByID writes every column of event to the row with the given id.
// Nil pointers are written as NULL.
func (r *EventRepository) UpdateByID(ctx context.Context, id int64, event *models.Event) error {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Select("*").
		Omit("id").
		Updates(event)

	if result.Error != nil {
		return &StoreError{Op: "update event", Err: result.Error}
	}

	if result.RowsAffected == 0 {
		return &StoreError{Op: "update event", Err: ErrEventNotFound}
	}

	return nil
}

// GetByID retrieves a single event
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StoreError{Op: "get event", Err: ErrEventNotFound}
	}
	if err != nil {
		return nil, &StoreError{Op: "get event", Err: err}
	}
	return &event, nil
}

// CreateAdminLog stores an audit entry
func (r *EventRepository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetAdminLogs returns audit entries, newest first
func (r *EventRepository) GetAdminLogs(ctx context.Context, limit int) ([]models.AdminLog, error) {
	logs := make([]models.AdminLog, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
