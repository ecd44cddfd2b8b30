package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackwise/api/models"
)

type TrackingStore struct {
	db *sql.DB
}

func NewTrackingStore(db *sql.DB) *TrackingStore {
	return &TrackingStore{db: db}
}

func (s *TrackingStore) CreateTracking(ctx context.Context, tracking *models.NewTracking) error {
	query := `
		INSERT INTO trackings (tracking_id, name, owner_id)
		VALUES ($1, $2, $3);
	`
	if _, err := s.db.ExecContext(ctx, query, tracking.TrackingID, tracking.Name, tracking.OwnerID); err != nil {
		return fmt.Errorf("failed to create tracking: %w", err)
	}

	return nil
}

func (s *TrackingStore) IDFromTrackingID(ctx context.Context, trackingID string) (int, error) {
	var id int
	query := `SELECT id FROM trackings WHERE tracking_id = $1;`
	err := s.db.QueryRowContext(ctx, query, trackingID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to resolve tracking id: %w", err)
	}

	return id, nil
}

func (s *TrackingStore) TrackingOwner(ctx context.Context, trackingID string) (int, int, error) {
	var id, ownerID int
	query := `SELECT id, owner_id FROM trackings WHERE tracking_id = $1;`
	err := s.db.QueryRowContext(ctx, query, trackingID).Scan(&id, &ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, ErrNotFound
		}
		return 0, 0, fmt.Errorf("failed to resolve tracking owner: %w", err)
	}

	return id, ownerID, nil
}

func (s *TrackingStore) TrackingName(ctx context.Context, id int) (string, error) {
	var name string
	query := `SELECT name FROM trackings WHERE id = $1;`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get tracking name: %w", err)
	}

	return name, nil
}

// ListTrackings returns the owner's trackings with aggregate counts over
// their children. A tracking with no traffic yet yields all zeroes.
func (s *TrackingStore) ListTrackings(ctx context.Context, ownerID int) ([]models.TrackingSummary, error) {
	query := `
		SELECT trackings.tracking_id,
			trackings.name,
			trackings.created_at,
			COUNT(DISTINCT visitors.id) AS visitor_count,
			COUNT(DISTINCT sessions.id) AS sessions_count,
			COUNT(DISTINCT events.id) AS events_count,
			COUNT(DISTINCT sources.id) AS sources_count
		FROM trackings
			LEFT JOIN visitors ON visitors.tracking_id = trackings.id
			LEFT JOIN sessions ON sessions.tracking_id = trackings.id
			LEFT JOIN events ON events.tracking_id = trackings.id
			LEFT JOIN sources ON sources.tracking_id = trackings.id
		WHERE trackings.owner_id = $1
		GROUP BY trackings.tracking_id, trackings.name, trackings.created_at;
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trackings: %w", err)
	}
	defer rows.Close()

	trackings := []models.TrackingSummary{}
	for rows.Next() {
		var t models.TrackingSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.VisitorCount, &t.SessionsCount, &t.EventsCount, &t.SourcesCount); err != nil {
			return nil, fmt.Errorf("failed to scan tracking row: %w", err)
		}
		trackings = append(trackings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing trackings: %w", err)
	}

	return trackings, nil
}

func (s *TrackingStore) RenameTracking(ctx context.Context, id int, name string) error {
	query := `UPDATE trackings SET name = $1 WHERE id = $2;`
	if _, err := s.db.ExecContext(ctx, query, name, id); err != nil {
		return fmt.Errorf("failed to rename tracking: %w", err)
	}

	return nil
}

// DeleteTracking removes the tracking row; sources, visitors, sessions and
// events follow through ON DELETE CASCADE.
func (s *TrackingStore) DeleteTracking(ctx context.Context, id int) error {
	query := `DELETE FROM trackings WHERE id = $1;`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete tracking: %w", err)
	}

	return nil
}
