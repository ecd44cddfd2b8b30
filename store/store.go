// Package store is the attribution and reporting store: public/internal id
// mapping, mutations and aggregation reads for trackings, sources, visitors,
// sessions, events and users. Postgres-backed implementations live alongside
// an in-memory variant used in tests; both are selected by injection at
// process start.
package store

import (
	"context"
	"errors"
	"time"

	"trackwise/api/models"
)

// ErrNotFound reports an absent row on lookup paths that are expected to
// tolerate absence. Aggregation reads never return it; they yield empty
// results instead.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	// CreateUser stores a new user with an already-hashed secret code.
	CreateUser(ctx context.Context, userID string, secretCode []byte) (*models.User, error)
	// UserCredentials returns the internal key and stored secret for a public
	// user id, or ErrNotFound.
	UserCredentials(ctx context.Context, userID string) (int, []byte, error)
}

type TrackingRepository interface {
	CreateTracking(ctx context.Context, tracking *models.NewTracking) error
	// IDFromTrackingID maps the public tracking identifier to its internal key.
	IDFromTrackingID(ctx context.Context, trackingID string) (int, error)
	// TrackingOwner returns the internal key and owning user key for a public
	// tracking identifier in one lookup, for the ownership gate.
	TrackingOwner(ctx context.Context, trackingID string) (id int, ownerID int, err error)
	TrackingName(ctx context.Context, id int) (string, error)
	ListTrackings(ctx context.Context, ownerID int) ([]models.TrackingSummary, error)
	RenameTracking(ctx context.Context, id int, name string) error
	DeleteTracking(ctx context.Context, id int) error
}

type SourceRepository interface {
	CreateSource(ctx context.Context, trackingID int, name string) error
	// IDFromSourceName maps a source name to its internal key, scoped to one
	// tracking. ErrNotFound when the name does not exist for that tracking.
	IDFromSourceName(ctx context.Context, trackingID int, name string) (int, error)
	// ListSources returns every source with visitor and session totals.
	ListSources(ctx context.Context, trackingID int) ([]models.SourceStats, error)
	// DirectStats aggregates visitors and sessions with no source attached.
	DirectStats(ctx context.Context, trackingID int) (models.SourceStats, error)
	DeleteSource(ctx context.Context, trackingID int, name string) error
}

type VisitorRepository interface {
	// CreateVisitor inserts a new visitor row and returns its internal key.
	CreateVisitor(ctx context.Context, visitor *models.NewVisitor) (int, error)
	// IDFromVisitorID maps the public visitor identifier to its internal key.
	IDFromVisitorID(ctx context.Context, visitorID string) (int, error)
	ListVisitors(ctx context.Context, trackingID int) ([]models.VisitorInfo, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.NewSession) error
	// EndSession sets the client end timestamp plus a server-side ended_at
	// marker, keyed solely by public session id. Last write wins on a double
	// end; ErrNotFound when no row matches.
	EndSession(ctx context.Context, sessionID string, endTimestamp time.Time) error
	// CreateEvent appends an event to the session identified by its public id.
	// An unknown session id fails the insert at the constraint level.
	CreateEvent(ctx context.Context, sessionID, eventType, target string, trackingID int) error
	ListSessions(ctx context.Context, trackingID int) ([]models.SessionInfo, error)
}

// StatsRepository is the read side: grouped counts scoped by internal
// tracking key.
type StatsRepository interface {
	CountSessionsByWeekday(ctx context.Context, trackingID int) ([]models.WeekdayCount, error)
	CountVisitorsByWeekday(ctx context.Context, trackingID int) ([]models.WeekdayCount, error)
	CountSessionsByHour(ctx context.Context, trackingID int) ([]models.HourCount, error)
	CountVisitorsByHour(ctx context.Context, trackingID int) ([]models.HourCount, error)
	CountVisitorsByOS(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountVisitorsByBrowser(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountVisitorsByDevice(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountSessionsByPathname(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountSessionsByTitle(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountSessionsByCountry(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	CountSessionsByReferral(ctx context.Context, trackingID int) ([]models.FieldCount, error)
	// ListReferers groups visitors by referer URL.
	ListReferers(ctx context.Context, trackingID int) ([]models.FieldCount, error)
}
