package tracker

import (
	"context"
	"fmt"
	"math"
	"net"
	"time"

	"trackwise/api/geoip"
	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/utils"
)

// SessionStart carries the inputs for opening one browsing session against
// an already-resolved visitor.
type SessionStart struct {
	TrackingKey int
	VisitorKey  int
	Timestamp   float64
	Title       string
	Pathname    string
	Referral    *string
	RemoteIP    net.IP
}

// SessionManager creates, ends and appends events to sessions. Starting a
// session never checks for an existing open one: multiple concurrent open
// sessions per visitor are allowed.
type SessionManager struct {
	sessions store.SessionRepository
	locator  geoip.Locator
}

func NewSessionManager(sessions store.SessionRepository, locator geoip.Locator) *SessionManager {
	return &SessionManager{sessions: sessions, locator: locator}
}

// Start resolves the client's location, persists a new session row and
// returns its public identifier.
func (m *SessionManager) Start(ctx context.Context, start SessionStart) (string, error) {
	location, err := m.locator.Locate(start.RemoteIP)
	if err != nil {
		return "", fmt.Errorf("%w: locating %s: %v", ErrEnrichment, start.RemoteIP, err)
	}

	session := &models.NewSession{
		SessionID:      utils.GenerateID(),
		VisitorID:      start.VisitorKey,
		TrackingID:     start.TrackingKey,
		StartTimestamp: unixToTime(start.Timestamp),
		Title:          start.Title,
		Pathname:       start.Pathname,
		Referral:       start.Referral,
		CountryCode:    location.CountryCode,
		CityName:       location.CityName,
		ContinentCode:  location.ContinentCode,
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	return session.SessionID, nil
}

// End terminates the session identified by its public id. Ending twice
// overwrites the end fields (last write wins); an unknown id surfaces
// store.ErrNotFound.
func (m *SessionManager) End(ctx context.Context, sessionID string, timestamp float64) error {
	if err := m.sessions.EndSession(ctx, sessionID, unixToTime(timestamp)); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}

	return nil
}

// RecordEvent appends one client interaction to a session. The session is
// resolved by public id inside the store call; an unknown session fails the
// append instead of silently dropping the event.
func (m *SessionManager) RecordEvent(ctx context.Context, sessionID, eventType, target string, trackingKey int) error {
	if err := m.sessions.CreateEvent(ctx, sessionID, eventType, target, trackingKey); err != nil {
		return fmt.Errorf("recording event: %w", err)
	}

	return nil
}

// unixToTime converts a client-supplied unix timestamp with fractional
// seconds into UTC time.
func unixToTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
