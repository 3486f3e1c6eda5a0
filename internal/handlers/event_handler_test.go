package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"events-admin/internal/auth"
	"events-admin/internal/models"
	"events-admin/internal/repository"
	"events-admin/internal/services"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func day(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Event{}, &models.AdminLog{}))

	events := []models.Event{
		{
			ID:            1,
			Name:          models.StringPtr("ETHDenver"),
			Location:      models.StringPtr("Denver"),
			VenueType:     models.StringPtr(models.VenueTypeIRL),
			StartValue:    day("2025-02-23"),
			EndValue:      day("2025-03-02"),
			ThemeOptional: models.StringPtr(`["DeFi","NFTs","DAOs"]`),
			Link:          models.StringPtr(`["https://ethdenver.com"]`),
			Approved:      models.BoolPtr(true),
		},
		{
			ID:         2,
			Name:       models.StringPtr("Online Summit"),
			VenueType:  models.StringPtr(models.VenueTypeVirtual),
			StartValue: day("2025-06-01"),
		},
		{
			ID:         3,
			Name:       models.StringPtr("Hybrid Week"),
			VenueType:  models.StringPtr(models.VenueTypeHybrid),
			StartValue: day("2025-09-15"),
		},
	}
	require.NoError(t, db.Create(&events).Error)

	repo := repository.NewEventRepository(db)
	manager := services.NewSessionManager(repo, services.SessionOptions{
		Location: time.UTC,
		Audit:    repo,
	})

	auth.InitJWT("handler-test-secret")
	token, err := auth.GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/admin", auth.AuthMiddleware())
	NewEventHandler(manager, repo, time.UTC, 20).RegisterRoutes(api)

	return &testServer{router: router, db: db, token: token}
}

type response struct {
	Success bool            `json:"success"`
	Saved   bool            `json:"saved"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decodeRows(t *testing.T, raw json.RawMessage) []EventRow {
	t.Helper()
	var rows []EventRow
	require.NoError(t, json.Unmarshal(raw, &rows))
	return rows
}

func TestNewEventRow(t *testing.T) {
	same := day("2025-05-05")

	t.Run("full row", func(t *testing.T) {
		e := &models.Event{
			ID:            7,
			Name:          models.StringPtr("Devcon"),
			Location:      models.StringPtr("Bangkok"),
			StartValue:    day("2025-11-12"),
			EndValue:      day("2025-11-15"),
			ThemeOptional: models.StringPtr(`["L2","ZK","Privacy"]`),
			Link:          models.StringPtr(`["https://devcon.org","https://x.com/devcon"]`),
			Approved:      models.BoolPtr(true),
			Highlighted:   models.BoolPtr(true),
		}
		row := NewEventRow(e, time.UTC)

		assert.Equal(t, "Devcon", row.Name)
		assert.Equal(t, "Bangkok", row.Location)
		assert.Equal(t, []string{"L2", "ZK"}, row.Themes)
		assert.Equal(t, "https://devcon.org", row.PrimaryLink)
		assert.Equal(t, "Nov 12, 2025", row.StartDate)
		assert.Equal(t, "Nov 15, 2025", row.EndDate)
		assert.Equal(t, "Approved", row.Status)
		assert.True(t, row.Highlighted)
	})

	t.Run("fallbacks", func(t *testing.T) {
		e := &models.Event{
			ID:            8,
			Name:          models.StringPtr(""),
			StartValue:    same,
			EndValue:      same,
			ThemeOptional: models.StringPtr("not json"),
		}
		row := NewEventRow(e, time.UTC)

		assert.Equal(t, "Untitled Event", row.Name)
		assert.Equal(t, "TBA", row.Location)
		assert.Empty(t, row.Themes)
		assert.NotNil(t, row.Themes)
		assert.Empty(t, row.PrimaryLink)
		assert.Equal(t, "May 5, 2025", row.StartDate)
		assert.Empty(t, row.EndDate)
		assert.Equal(t, "Pending", row.Status)
		assert.False(t, row.Highlighted)
	})
}

func TestRoutesRequireToken(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetEventsAndFilters(t *testing.T) {
	s := setupServer(t)

	code, resp := s.do(t, http.MethodGet, "/api/admin/events", nil)
	require.Equal(t, http.StatusOK, code)
	rows := decodeRows(t, resp.Data)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].ID, "newest start first")

	code, _ = s.do(t, http.MethodPut, "/api/admin/filters", map[string]string{"venue_type": "IRL"})
	require.Equal(t, http.StatusOK, code)

	_, resp = s.do(t, http.MethodGet, "/api/admin/events", nil)
	rows = decodeRows(t, resp.Data)
	require.Len(t, rows, 1)
	assert.Equal(t, "ETHDenver", rows[0].Name)
	assert.Equal(t, []string{"DeFi", "NFTs"}, rows[0].Themes)

	code, _ = s.do(t, http.MethodPatch, "/api/admin/filters", map[string]string{"name": "venue_type", "value": ""})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPatch, "/api/admin/filters", map[string]string{"name": "start_date", "value": "2025-06-01"})
	require.Equal(t, http.StatusOK, code)

	_, resp = s.do(t, http.MethodGet, "/api/admin/events", nil)
	rows = decodeRows(t, resp.Data)
	assert.Len(t, rows, 2)

	_, resp = s.do(t, http.MethodGet, "/api/admin/stats", nil)
	var stats services.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Filtered)
	assert.Equal(t, 1, stats.ActiveFilters)
	assert.Equal(t, "33.33", stats.ApprovalRate.String())

	code, _ = s.do(t, http.MethodDelete, "/api/admin/filters", nil)
	require.Equal(t, http.StatusOK, code)
	_, resp = s.do(t, http.MethodGet, "/api/admin/events", nil)
	assert.Len(t, decodeRows(t, resp.Data), 3)
}

func TestFiltersRejectInvalidValues(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name   string
		method string
		body   map[string]string
	}{
		{"unknown venue type", http.MethodPut, map[string]string{"venue_type": "Moon"}},
		{"bad date", http.MethodPut, map[string]string{"start_date": "01/02/2025"}},
		{"bad selector", http.MethodPut, map[string]string{"approved": "yes"}},
		{"unknown criterion", http.MethodPatch, map[string]string{"name": "color", "value": "red"}},
		{"bad single focus", http.MethodPatch, map[string]string{"name": "ecosystem_focus", "value": "Fringe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := s.do(t, tt.method, "/api/admin/filters", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, resp.Error)
		})
	}

	_, resp := s.do(t, http.MethodGet, "/api/admin/filters", nil)
	assert.JSONEq(t, `{"search":"","venue_type":"","approved":"","highlighted":"","ecosystem_focus":"","start_date":"","end_date":""}`, string(resp.Data))
}

func TestGetEvent(t *testing.T) {
	s := setupServer(t)
	s.do(t, http.MethodPost, "/api/admin/events/refresh", nil)

	code, _ := s.do(t, http.MethodGet, "/api/admin/events/2", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/events/99", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/events/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEditFlow(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/admin/edit", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp := s.do(t, http.MethodPost, "/api/admin/events/2/edit", nil)
	require.Equal(t, http.StatusOK, code)
	var view services.EditView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, int64(2), view.EventID)

	code, _ = s.do(t, http.MethodPatch, "/api/admin/edit", map[string]string{"field": "theme_optional", "value": "DeFi,  , NFTs,"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPatch, "/api/admin/edit", map[string]string{"field": "approved", "value": "true"})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPatch, "/api/admin/edit", map[string]string{"field": "color", "value": "red"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, resp = s.do(t, http.MethodPatch, "/api/admin/edit", map[string]string{"field": "venue_type", "value": "Moon"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp.Data, "buffer returned with the error")

	code, resp = s.do(t, http.MethodPost, "/api/admin/edit/submit", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Saved)

	var stored models.Event
	require.NoError(t, s.db.First(&stored, 2).Error)
	assert.Equal(t, `["DeFi","NFTs"]`, *stored.ThemeOptional)
	assert.True(t, stored.IsApproved())
	require.NotNil(t, stored.UpdatedAt)

	code, _ = s.do(t, http.MethodGet, "/api/admin/edit", nil)
	assert.Equal(t, http.StatusConflict, code, "buffer closed after save")

	_, resp = s.do(t, http.MethodGet, "/api/admin/stats", nil)
	var stats services.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 2, stats.Approved, "list refreshed after save")

	_, resp = s.do(t, http.MethodGet, "/api/admin/logs", nil)
	var logs []models.AdminLog
	require.NoError(t, json.Unmarshal(resp.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "alice", logs[0].Operator)
	assert.Equal(t, models.AdminActionUpdateEvent, logs[0].Action)
}

func TestEditSubmitRequiresName(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/admin/events/1/edit", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPatch, "/api/admin/edit", map[string]string{"field": "event", "value": "   "})
	require.Equal(t, http.StatusOK, code)

	code, resp := s.do(t, http.MethodPost, "/api/admin/edit/submit", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	var view services.EditView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.NotEmpty(t, view.Error)

	var stored models.Event
	require.NoError(t, s.db.First(&stored, 1).Error)
	assert.Equal(t, "ETHDenver", *stored.Name)

	code, _ = s.do(t, http.MethodDelete, "/api/admin/edit", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/admin/edit", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestGetLogsLimit(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/admin/logs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := s.do(t, http.MethodGet, "/api/admin/logs?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

type failingStore struct{}

func (failingStore) FetchAll(context.Context, repository.OrderField, bool) ([]models.Event, error) {
	return nil, assert.AnError
}

func (failingStore) UpdateByID(context.Context, int64, *models.Event) error {
	return assert.AnError
}

func TestRefreshStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth.InitJWT("handler-test-secret")
	token, err := auth.GenerateToken("bob", time.Hour)
	require.NoError(t, err)

	manager := services.NewSessionManager(failingStore{}, services.SessionOptions{Location: time.UTC})
	router := gin.New()
	NewEventHandler(manager, nil, time.UTC, 0).RegisterRoutes(router.Group("/api/admin", auth.AuthMiddleware()))
	s := &testServer{router: router, token: token}

	code, resp := s.do(t, http.MethodPost, "/api/admin/events/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Failed to fetch events", resp.Error)

	code, _ = s.do(t, http.MethodGet, "/api/admin/events", nil)
	assert.Equal(t, http.StatusBadGateway, code)
}
