package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackwise/api/models"
	"trackwise/api/store"
)

func TestMemoryDeleteTrackingCascades(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateTracking(ctx, &models.NewTracking{TrackingID: "trk-1", Name: "site", OwnerID: 1}))
	trackingKey, err := mem.IDFromTrackingID(ctx, "trk-1")
	require.NoError(t, err)

	require.NoError(t, mem.CreateSource(ctx, trackingKey, "newsletter"))
	visitorKey, err := mem.CreateVisitor(ctx, &models.NewVisitor{VisitorID: "v-1", TrackingID: trackingKey})
	require.NoError(t, err)
	require.NoError(t, mem.CreateSession(ctx, &models.NewSession{
		SessionID:      "s-1",
		VisitorID:      visitorKey,
		TrackingID:     trackingKey,
		StartTimestamp: time.Now().UTC(),
	}))
	require.NoError(t, mem.CreateEvent(ctx, "s-1", "click", "#cta", trackingKey))

	require.NoError(t, mem.DeleteTracking(ctx, trackingKey))

	_, err = mem.IDFromTrackingID(ctx, "trk-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.IDFromSourceName(ctx, trackingKey, "newsletter")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.IDFromVisitorID(ctx, "v-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	sessions, err := mem.ListSessions(ctx, trackingKey)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestMemoryDuplicateTrackingID(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateTracking(ctx, &models.NewTracking{TrackingID: "trk-1", Name: "site", OwnerID: 1}))
	assert.Error(t, mem.CreateTracking(ctx, &models.NewTracking{TrackingID: "trk-1", Name: "other", OwnerID: 2}))
}

func TestMemoryDuplicateSourceName(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateSource(ctx, 1, "newsletter"))
	assert.Error(t, mem.CreateSource(ctx, 1, "newsletter"))

	// Same name under another tracking is fine.
	assert.NoError(t, mem.CreateSource(ctx, 2, "newsletter"))
}

func TestMemorySourceStats(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.CreateTracking(ctx, &models.NewTracking{TrackingID: "trk-1", Name: "site", OwnerID: 1}))
	trackingKey, err := mem.IDFromTrackingID(ctx, "trk-1")
	require.NoError(t, err)
	require.NoError(t, mem.CreateSource(ctx, trackingKey, "newsletter"))
	sourceKey, err := mem.IDFromSourceName(ctx, trackingKey, "newsletter")
	require.NoError(t, err)

	attributed, err := mem.CreateVisitor(ctx, &models.NewVisitor{VisitorID: "v-1", TrackingID: trackingKey, SourceID: &sourceKey})
	require.NoError(t, err)
	_, err = mem.CreateVisitor(ctx, &models.NewVisitor{VisitorID: "v-2", TrackingID: trackingKey})
	require.NoError(t, err)
	require.NoError(t, mem.CreateSession(ctx, &models.NewSession{
		SessionID:      "s-1",
		VisitorID:      attributed,
		TrackingID:     trackingKey,
		StartTimestamp: time.Now().UTC(),
	}))

	sources, err := mem.ListSources(ctx, trackingKey)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, models.SourceStats{Name: "newsletter", VisitorCount: 1, SessionCount: 1}, sources[0])

	direct, err := mem.DirectStats(ctx, trackingKey)
	require.NoError(t, err)
	assert.Equal(t, models.SourceStats{Name: "direct", VisitorCount: 1, SessionCount: 0}, direct)
}
