package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackwise/api/geoip"
	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/tracker"
)

func startSession(t *testing.T, manager *tracker.SessionManager, mem *store.Memory) (string, int) {
	t.Helper()

	visitorKey := seedVisitor(t, mem)
	id, err := manager.Start(context.Background(), tracker.SessionStart{
		TrackingKey: 1,
		VisitorKey:  visitorKey,
		Timestamp:   1700000000.5,
		Title:       "Home",
		Pathname:    "/",
	})
	require.NoError(t, err)

	return id, visitorKey
}

func seedVisitor(t *testing.T, mem *store.Memory) int {
	t.Helper()

	key, err := mem.CreateVisitor(context.Background(), &models.NewVisitor{
		VisitorID:  "visitor-" + t.Name(),
		TrackingID: 1,
		UserAgent:  chromeUA,
		UADevice:   "Other",
		UAOS:       "Windows",
		UABrowser:  "Chrome",
	})
	require.NoError(t, err)
	return key
}

func TestSessionStart(t *testing.T) {
	mem := store.NewMemory()
	country := "DE"
	manager := tracker.NewSessionManager(mem, geoip.Static{Location: geoip.Location{CountryCode: &country}})

	id, _ := startSession(t, manager, mem)
	assert.NotEmpty(t, id)

	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "Home", sessions[0].Title)
	assert.Equal(t, time.Unix(1700000000, 500000000).UTC(), sessions[0].StartTimestamp)
	assert.Nil(t, sessions[0].EndTimestamp)

	countries, err := mem.CountSessionsByCountry(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "DE", countries[0].Name)
}

func TestSessionStartLocateFailure(t *testing.T) {
	mem := store.NewMemory()
	manager := tracker.NewSessionManager(mem, geoip.Static{Err: errors.New("lookup timed out")})
	visitorKey := seedVisitor(t, mem)

	_, err := manager.Start(context.Background(), tracker.SessionStart{
		TrackingKey: 1,
		VisitorKey:  visitorKey,
		Timestamp:   1700000000,
		Title:       "Home",
		Pathname:    "/",
	})
	assert.ErrorIs(t, err, tracker.ErrEnrichment)

	// Nothing stored on failed enrichment.
	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionEnd(t *testing.T) {
	mem := store.NewMemory()
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())
	id, _ := startSession(t, manager, mem)

	require.NoError(t, manager.End(context.Background(), id, 1700000100))

	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTimestamp)
	assert.Equal(t, time.Unix(1700000100, 0).UTC(), *sessions[0].EndTimestamp)
}

func TestSessionEndLastWriteWins(t *testing.T) {
	mem := store.NewMemory()
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())
	id, _ := startSession(t, manager, mem)

	require.NoError(t, manager.End(context.Background(), id, 1700000100))
	require.NoError(t, manager.End(context.Background(), id, 1700000200))

	sessions, err := mem.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTimestamp)
	assert.Equal(t, time.Unix(1700000200, 0).UTC(), *sessions[0].EndTimestamp)
}

func TestSessionEndUnknown(t *testing.T) {
	mem := store.NewMemory()
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())

	err := manager.End(context.Background(), "no-such-session", 1700000100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordEvent(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.CreateTracking(context.Background(), &models.NewTracking{TrackingID: "trk-1", Name: "site", OwnerID: 7}))
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())
	id, _ := startSession(t, manager, mem)

	require.NoError(t, manager.RecordEvent(context.Background(), id, "click", "#signup", 1))

	trackings, err := mem.ListTrackings(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, trackings, 1)
	assert.Equal(t, int64(1), trackings[0].EventsCount)
}

func TestRecordEventUnknownSession(t *testing.T) {
	mem := store.NewMemory()
	manager := tracker.NewSessionManager(mem, geoip.NewNoop())

	err := manager.RecordEvent(context.Background(), "no-such-session", "click", "#signup", 1)
	assert.Error(t, err)
}
