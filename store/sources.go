package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackwise/api/models"
)

type SourceStore struct {
	db *sql.DB
}

func NewSourceStore(db *sql.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) CreateSource(ctx context.Context, trackingID int, name string) error {
	query := `INSERT INTO sources (name, tracking_id) VALUES ($1, $2);`
	if _, err := s.db.ExecContext(ctx, query, name, trackingID); err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	return nil
}

func (s *SourceStore) IDFromSourceName(ctx context.Context, trackingID int, name string) (int, error) {
	var id int
	query := `SELECT id FROM sources WHERE tracking_id = $1 AND name = $2;`
	err := s.db.QueryRowContext(ctx, query, trackingID, name).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to resolve source name: %w", err)
	}

	return id, nil
}

func (s *SourceStore) ListSources(ctx context.Context, trackingID int) ([]models.SourceStats, error) {
	query := `
		SELECT sources.name,
			COUNT(DISTINCT visitors.id) AS visitor_count,
			COUNT(DISTINCT sessions.id) AS session_count
		FROM sources
			LEFT JOIN visitors ON visitors.source_id = sources.id
			LEFT JOIN sessions ON sessions.visitor_id = visitors.id
		WHERE sources.tracking_id = $1
		GROUP BY sources.name;
	`
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := []models.SourceStats{}
	for rows.Next() {
		var src models.SourceStats
		if err := rows.Scan(&src.Name, &src.VisitorCount, &src.SessionCount); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing sources: %w", err)
	}

	return sources, nil
}

// DirectStats counts visitors with no source and their sessions, reported as
// the synthetic "direct" channel.
func (s *SourceStore) DirectStats(ctx context.Context, trackingID int) (models.SourceStats, error) {
	query := `
		SELECT COUNT(DISTINCT visitors.id) AS visitor_count,
			COUNT(DISTINCT sessions.id) AS session_count
		FROM visitors
			LEFT JOIN sessions ON sessions.visitor_id = visitors.id
		WHERE visitors.tracking_id = $1 AND visitors.source_id IS NULL;
	`
	direct := models.SourceStats{Name: "direct"}
	err := s.db.QueryRowContext(ctx, query, trackingID).Scan(&direct.VisitorCount, &direct.SessionCount)
	if err != nil {
		return models.SourceStats{}, fmt.Errorf("failed to count direct traffic: %w", err)
	}

	return direct, nil
}

func (s *SourceStore) DeleteSource(ctx context.Context, trackingID int, name string) error {
	query := `DELETE FROM sources WHERE tracking_id = $1 AND name = $2;`
	if _, err := s.db.ExecContext(ctx, query, trackingID, name); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	return nil
}
