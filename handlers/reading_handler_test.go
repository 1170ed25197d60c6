package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubReadsAPI/internal/config"
	"clubReadsAPI/internal/storage"
	"clubReadsAPI/middleware"
	"clubReadsAPI/services"
)

func newTestHandler() *ReadingHandler {
	cfg := &config.Config{
		InitialLives:      1,
		MaxLives:          5,
		MilestoneInterval: 10,
	}
	svc := services.NewReadingService(storage.NewMemoryLedger(), storage.NewMemoryStreakStore(), cfg)
	return NewReadingHandler(svc)
}

func authedRequest(method, target string, body []byte, clerkID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

func TestRegisterReadingHandler(t *testing.T) {
	h := newTestHandler()

	payload := []byte(`{"book": "John", "chapter": 3, "verse": 16, "points_earned": 5}`)
	req := authedRequest(http.MethodPost, "/api/v1/reading", payload, "user_test_1")
	rr := httptest.NewRecorder()

	h.RegisterReading(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var info map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, float64(1), info["current_streak"])
	assert.Equal(t, float64(1), info["lives"])
	assert.Equal(t, true, info["has_read_today"])
	assert.Equal(t, true, info["streak_active"])
}

func TestRegisterReadingHandlerUnauthenticated(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reading", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()

	h.RegisterReading(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterReadingHandlerBadBody(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading", []byte(`not json`), "user_test_1")
	rr := httptest.NewRecorder()

	h.RegisterReading(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterReadingHandlerValidation(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading", []byte(`{"book": "", "chapter": 1, "verse": 1}`), "user_test_1")
	rr := httptest.NewRecorder()

	h.RegisterReading(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterReadingHandlerBackdated(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading",
		[]byte(`{"book": "John", "chapter": 1, "verse": 1}`), "user_test_1")
	rr := httptest.NewRecorder()
	h.RegisterReading(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = authedRequest(http.MethodPost, "/api/v1/reading",
		[]byte(`{"book": "John", "chapter": 2, "verse": 1, "occurred_at": "2020-01-01T10:00:00Z"}`), "user_test_1")
	rr = httptest.NewRecorder()
	h.RegisterReading(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetStreakInfoHandlerZeroState(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodGet, "/api/v1/reading/streak", nil, "user_test_2")
	rr := httptest.NewRecorder()

	h.GetStreakInfo(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, float64(0), info["current_streak"])
	assert.Equal(t, float64(1), info["lives"])
	assert.Equal(t, false, info["streak_active"])
	assert.Nil(t, info["last_reading_day"])
}

func TestGetStreakInfoHandlerAfterReading(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading",
		[]byte(`{"book": "Mark", "chapter": 1, "verse": 1}`), "user_test_3")
	rr := httptest.NewRecorder()
	h.RegisterReading(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = authedRequest(http.MethodGet, "/api/v1/reading/streak", nil, "user_test_3")
	rr = httptest.NewRecorder()
	h.GetStreakInfo(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, float64(1), info["current_streak"])
	assert.Equal(t, true, info["has_read_today"])
}

func TestGetHistoryHandler(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading",
		[]byte(`{"book": "Luke", "chapter": 2, "verse": 7}`), "user_test_4")
	rr := httptest.NewRecorder()
	h.RegisterReading(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = authedRequest(http.MethodGet, "/api/v1/reading/history?limit=10", nil, "user_test_4")
	rr = httptest.NewRecorder()
	h.GetHistory(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var history struct {
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history.Events, 1)
	assert.Equal(t, "Luke", history.Events[0]["book"])
}

func TestGetCalendarHandlerValidation(t *testing.T) {
	h := newTestHandler()

	cases := []string{
		"/api/v1/reading/calendar",
		"/api/v1/reading/calendar?year=2026",
		"/api/v1/reading/calendar?year=abc&month=3",
		"/api/v1/reading/calendar?year=2026&month=13",
	}
	for _, target := range cases {
		req := authedRequest(http.MethodGet, target, nil, "user_test_5")
		rr := httptest.NewRecorder()
		h.GetCalendar(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestGetStatsHandler(t *testing.T) {
	h := newTestHandler()

	req := authedRequest(http.MethodPost, "/api/v1/reading",
		[]byte(`{"book": "Acts", "chapter": 2, "verse": 1, "points_earned": 3}`), "user_test_6")
	rr := httptest.NewRecorder()
	h.RegisterReading(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = authedRequest(http.MethodGet, "/api/v1/reading/stats", nil, "user_test_6")
	rr = httptest.NewRecorder()
	h.GetStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var readingStats map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &readingStats))
	assert.Equal(t, float64(1), readingStats["total_days_read"])
	assert.Equal(t, float64(3), readingStats["total_points"])
	assert.Equal(t, true, readingStats["today_status"])
}
