package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackwise/api/geoip"
	"trackwise/api/handlers"
	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/tracker"
	"trackwise/api/uaparser"
)

const testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36"

func newTrackingRouter(t *testing.T) (*gin.Engine, *store.Memory, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	tracking := &models.NewTracking{TrackingID: "trk-1", Name: "site", OwnerID: 1}
	require.NoError(t, mem.CreateTracking(context.Background(), tracking))

	resolver := tracker.NewVisitorResolver(mem, mem, mem, uaparser.NewRegex())
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())
	h := handlers.NewSessionHandlers(resolver, manager, mem)

	r := gin.New()
	r.POST("/session/start", h.StartSession)
	r.POST("/session/end", h.EndSession)
	r.POST("/session/event", h.RecordEvent)

	return r, mem, tracking.TrackingID
}

func doStart(t *testing.T, r *gin.Engine, trackingID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/session/start", strings.NewReader(
		`{"timestamp": 1700000000.5, "title": "Home", "pathname": "/"}`))
	if trackingID != "" {
		req.Header.Set("x-tracking-id", trackingID)
	}
	req.Header.Set("User-Agent", testUA)
	req.Header.Set("Referer", "https://example.com/")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieValue(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %s not set", name)
	return ""
}

func TestStartSession(t *testing.T) {
	r, mem, trackingID := newTrackingRouter(t)

	w := doStart(t, r, trackingID)
	require.Equal(t, http.StatusOK, w.Code)

	visitorID := cookieValue(t, w, "visitorId")
	sessionID := cookieValue(t, w, "sessionId")
	assert.NotEmpty(t, visitorID)
	assert.NotEmpty(t, sessionID)

	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, sessionID, sessions[0].ID)

	visitors, err := mem.ListVisitors(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, visitorID, visitors[0].ID)
}

func TestStartSessionReusesVisitorCookie(t *testing.T) {
	r, mem, trackingID := newTrackingRouter(t)

	first := doStart(t, r, trackingID)
	require.Equal(t, http.StatusOK, first.Code)
	visitorID := cookieValue(t, first, "visitorId")

	req := httptest.NewRequest(http.MethodPost, "/session/start", strings.NewReader(
		`{"timestamp": 1700000100, "title": "Pricing", "pathname": "/pricing"}`))
	req.Header.Set("x-tracking-id", trackingID)
	req.Header.Set("User-Agent", testUA)
	req.Header.Set("Referer", "https://example.com/")
	req.AddCookie(&http.Cookie{Name: "visitorId", Value: visitorID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, visitorID, cookieValue(t, w, "visitorId"))

	// Same visitor, two sessions.
	visitors, err := mem.ListVisitors(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, visitors, 1)
	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestStartSessionMissingTrackingHeader(t *testing.T) {
	r, _, _ := newTrackingRouter(t)

	w := doStart(t, r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BODY")
}

func TestStartSessionMissingRequiredHeaders(t *testing.T) {
	r, mem, trackingID := newTrackingRouter(t)

	tests := []struct {
		name string
		drop string
	}{
		{name: "no user agent", drop: "User-Agent"},
		{name: "no referer", drop: "Referer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/session/start", strings.NewReader(
				`{"timestamp": 1700000000.5, "title": "Home", "pathname": "/"}`))
			req.Header.Set("x-tracking-id", trackingID)
			req.Header.Set("User-Agent", testUA)
			req.Header.Set("Referer", "https://example.com/")
			req.Header.Del(tt.drop)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_BODY")
		})
	}

	// The request never reached the pipeline.
	visitors, err := mem.ListVisitors(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, visitors)
}

func TestStartSessionUnknownTracking(t *testing.T) {
	r, _, _ := newTrackingRouter(t)

	w := doStart(t, r, "no-such-tracking")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestEndSession(t *testing.T) {
	r, mem, trackingID := newTrackingRouter(t)

	started := doStart(t, r, trackingID)
	sessionID := cookieValue(t, started, "sessionId")

	req := httptest.NewRequest(http.MethodPost, "/session/end", strings.NewReader(`{"timestamp": 1700000100}`))
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: sessionID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].EndTimestamp)

	// The session cookie is cleared on the way out.
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionId" {
			assert.Empty(t, c.Value)
		}
	}
}

func TestEndSessionMissingCookie(t *testing.T) {
	r, _, _ := newTrackingRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/session/end", strings.NewReader(`{"timestamp": 1700000100}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_SESSION_ID")
}

func TestEndSessionUnknown(t *testing.T) {
	r, _, _ := newTrackingRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/session/end", strings.NewReader(`{"timestamp": 1700000100}`))
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: "no-such-session"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRecordEventEndpoint(t *testing.T) {
	r, mem, trackingID := newTrackingRouter(t)

	started := doStart(t, r, trackingID)
	sessionID := cookieValue(t, started, "sessionId")

	req := httptest.NewRequest(http.MethodPost, "/session/event", strings.NewReader(
		`{"type": "click", "target": "#signup"}`))
	req.Header.Set("x-tracking-id", trackingID)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: sessionID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	trackings, err := mem.ListTrackings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, trackings, 1)
	assert.Equal(t, int64(1), trackings[0].EventsCount)
}

func TestRecordEventMissingSessionCookie(t *testing.T) {
	r, _, trackingID := newTrackingRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/session/event", strings.NewReader(
		`{"type": "click", "target": "#signup"}`))
	req.Header.Set("x-tracking-id", trackingID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_SESSION_ID")
}
