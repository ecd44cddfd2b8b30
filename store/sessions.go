package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trackwise/api/models"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, session *models.NewSession) error {
	query := `
		INSERT INTO sessions (session_id, visitor_id, tracking_id, start_timestamp, title, pathname, referral, country_code, city_name, continent_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := s.db.ExecContext(ctx, query,
		session.SessionID,
		session.VisitorID,
		session.TrackingID,
		session.StartTimestamp,
		session.Title,
		session.Pathname,
		session.Referral,
		session.CountryCode,
		session.CityName,
		session.ContinentCode,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// EndSession is keyed solely by the public session id. A second end call
// overwrites the first (last write wins); an unknown id yields ErrNotFound.
func (s *SessionStore) EndSession(ctx context.Context, sessionID string, endTimestamp time.Time) error {
	query := `
		UPDATE sessions
		SET ended_at = CURRENT_TIMESTAMP, end_timestamp = $1
		WHERE session_id = $2;
	`
	res, err := s.db.ExecContext(ctx, query, endTimestamp, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateEvent resolves the session through a subquery so the whole append is
// one statement. An unknown session id turns the subquery into NULL and the
// NOT NULL constraint rejects the insert.
func (s *SessionStore) CreateEvent(ctx context.Context, sessionID, eventType, target string, trackingID int) error {
	query := `
		INSERT INTO events (session_id, tracking_id, type, target)
		VALUES ((SELECT id FROM sessions WHERE session_id = $1), $2, $3, $4);
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, trackingID, eventType, target); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (s *SessionStore) ListSessions(ctx context.Context, trackingID int) ([]models.SessionInfo, error) {
	query := `
		SELECT session_id, title, pathname, start_timestamp, end_timestamp
		FROM sessions
		WHERE tracking_id = $1;
	`
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionInfo{}
	for rows.Next() {
		var sess models.SessionInfo
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Pathname, &sess.StartTimestamp, &sess.EndTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing sessions: %w", err)
	}

	return sessions, nil
}
