package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"events-admin/internal/auth"
	"events-admin/internal/filter"
	"events-admin/internal/models"
	"events-admin/internal/services"
)

const maxLogsLimit = 500

// AdminLogReader lists recent audit entries
type AdminLogReader interface {
	GetAdminLogs(ctx context.Context, limit int) ([]models.AdminLog, error)
}

type EventHandler struct {
	sessions  *services.SessionManager
	logs      AdminLogReader
	loc       *time.Location
	logsLimit int
}

func NewEventHandler(sessions *services.SessionManager, logs AdminLogReader, loc *time.Location, logsLimit int) *EventHandler {
	RegisterValidators()

	if loc == nil {
		loc = time.Local
	}
	if logsLimit <= 0 {
		logsLimit = 50
	}
	return &EventHandler{
		sessions:  sessions,
		logs:      logs,
		loc:       loc,
		logsLimit: logsLimit,
	}
}

// RegisterRoutes mounts the dashboard routes on an authenticated group
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/refresh", h.RefreshEvents)
	rg.GET("/events", h.GetEvents)
	rg.GET("/events/:id", h.GetEvent)
	rg.POST("/events/:id/edit", h.OpenEdit)
	rg.GET("/stats", h.GetStats)

	rg.GET("/filters", h.GetFilters)
	rg.PUT("/filters", h.ReplaceFilters)
	rg.PATCH("/filters", h.SetFilter)
	rg.DELETE("/filters", h.ClearFilters)

	rg.GET("/edit", h.GetEdit)
	rg.PATCH("/edit", h.SetEditField)
	rg.POST("/edit/submit", h.SubmitEdit)
	rg.DELETE("/edit", h.CancelEdit)

	rg.GET("/logs", h.GetLogs)
}

func (h *EventHandler) session(c *gin.Context) (*services.Session, bool) {
	operator, ok := auth.GetOperator(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return h.sessions.Get(operator), true
}

func parseEventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return 0, false
	}
	return id, true
}

// RefreshEvents re-fetches the event list of the session
func (h *EventHandler) RefreshEvents(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Refresh(c.Request.Context()); err != nil {
		respondError(c, "Failed to fetch events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.Stats(),
	})
}

// GetEvents returns the filtered table rows
func (h *EventHandler) GetEvents(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, "Failed to fetch events", err)
		return
	}

	events := s.Filtered()
	rows := make([]EventRow, 0, len(events))
	for i := range events {
		rows = append(rows, NewEventRow(&events[i], h.loc))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     rows,
		"criteria": s.Criteria(),
		"loading":  s.Loading(),
	})
}

// GetEvent returns one event of the session list
func (h *EventHandler) GetEvent(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := s.Event(id)
	if err != nil {
		respondError(c, "Event not found", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"event": event,
			"row":   NewEventRow(&event, h.loc),
		},
	})
}

// GetStats returns the dashboard counters
func (h *EventHandler) GetStats(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.Stats(),
	})
}

// GetFilters returns the current criteria
func (h *EventHandler) GetFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	criteria := s.Criteria()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    criteria,
		"active":  criteria.ActiveCount(),
	})
}

// ReplaceFilters sets every criterion at once
func (h *EventHandler) ReplaceFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var criteria filter.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetCriteria(criteria); err != nil {
		respondError(c, "Invalid filters", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    criteria,
		"active":  criteria.ActiveCount(),
	})
}

// SetFilter changes a single criterion
func (h *EventHandler) SetFilter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	criteria, err := s.SetCriterion(req.Name, req.Value)
	if err != nil {
		respondError(c, "Invalid filter", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    criteria,
		"active":  criteria.ActiveCount(),
	})
}

// ClearFilters resets every criterion
func (h *EventHandler) ClearFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	s.ClearCriteria()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.Criteria(),
		"active":  0,
	})
}

// OpenEdit starts editing an event of the session list
func (h *EventHandler) OpenEdit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	if err := s.EnsureLoaded(c.Request.Context()); err != nil {
		respondError(c, "Failed to fetch events", err)
		return
	}

	view, err := s.OpenEdit(id)
	if err != nil {
		respondError(c, "Failed to open event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// GetEdit returns the open edit buffer
func (h *EventHandler) GetEdit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	view, err := s.Edit()
	if err != nil {
		respondError(c, "No event is being edited", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// SetEditField assigns one form value of the open edit buffer
func (h *EventHandler) SetEditField(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := services.ParseField(req.Field)
	if err != nil {
		respondError(c, "Invalid field", err)
		return
	}

	view, err := s.SetEditField(field, req.Value)
	if err != nil {
		respondEditError(c, "Invalid field value", view, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// SubmitEdit saves the open edit buffer
func (h *EventHandler) SubmitEdit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	view, err := s.SubmitEdit(c.Request.Context())
	if err != nil {
		respondEditError(c, "Failed to save event", view, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"saved":   true,
		"data":    view,
	})
}

// CancelEdit discards the open edit buffer
func (h *EventHandler) CancelEdit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.CancelEdit(); err != nil {
		respondError(c, "Failed to cancel edit", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Edit cancelled",
	})
}

// GetLogs returns the most recent audit entries
func (h *EventHandler) GetLogs(c *gin.Context) {
	limit := h.logsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxLogsLimit)
	}

	logs, err := h.logs.GetAdminLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admin logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"limit":   limit,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, filter.ErrInvalidCriteria),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrFieldKind),
		errors.Is(err, services.ErrInvalidValue),
		errors.Is(err, services.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoEditOpen),
		errors.Is(err, services.ErrSaveInProgress),
		errors.Is(err, services.ErrRefreshInProgress):
		return http.StatusConflict
	default:
		// Store failures
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// respondEditError answers with the buffer state so the form can show the
// error next to the operator's values
func respondEditError(c *gin.Context, message string, view services.EditView, err error) {
	if errors.Is(err, services.ErrRefreshFailed) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Event saved but the list could not be refreshed",
			"details": err.Error(),
			"saved":   true,
			"data":    view,
		})
		return
	}

	body := gin.H{
		"error":   message,
		"details": err.Error(),
	}
	if view.EventID != 0 {
		body["data"] = view
	}
	c.JSON(statusFor(err), body)
}
