package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackwise/api/models"
)

type VisitorStore struct {
	db *sql.DB
}

func NewVisitorStore(db *sql.DB) *VisitorStore {
	return &VisitorStore{db: db}
}

// CreateVisitor inserts a new visitor row. This is the only mutation in the
// visitor resolution path; return visits never touch the row again.
func (s *VisitorStore) CreateVisitor(ctx context.Context, visitor *models.NewVisitor) (int, error) {
	var id int
	query := `
		INSERT INTO visitors (visitor_id, tracking_id, source_id, referer, user_agent, ua_device, ua_os, ua_browser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	err := s.db.QueryRowContext(ctx, query,
		visitor.VisitorID,
		visitor.TrackingID,
		visitor.SourceID,
		visitor.Referer,
		visitor.UserAgent,
		visitor.UADevice,
		visitor.UAOS,
		visitor.UABrowser,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create visitor: %w", err)
	}

	return id, nil
}

func (s *VisitorStore) IDFromVisitorID(ctx context.Context, visitorID string) (int, error) {
	var id int
	query := `SELECT id FROM visitors WHERE visitor_id = $1;`
	err := s.db.QueryRowContext(ctx, query, visitorID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to resolve visitor id: %w", err)
	}

	return id, nil
}

func (s *VisitorStore) ListVisitors(ctx context.Context, trackingID int) ([]models.VisitorInfo, error) {
	query := `
		SELECT visitors.visitor_id,
			visitors.referer,
			visitors.ua_os,
			visitors.ua_device,
			visitors.ua_browser,
			visitors.created_at,
			sources.name
		FROM visitors
			LEFT JOIN sources ON visitors.source_id = sources.id
		WHERE visitors.tracking_id = $1;
	`
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	visitors := []models.VisitorInfo{}
	for rows.Next() {
		var v models.VisitorInfo
		if err := rows.Scan(&v.ID, &v.Referer, &v.OS, &v.Device, &v.Browser, &v.CreatedAt, &v.SourceName); err != nil {
			return nil, fmt.Errorf("failed to scan visitor row: %w", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing visitors: %w", err)
	}

	return visitors, nil
}
