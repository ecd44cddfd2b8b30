package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackwise/api/models"
)

// StatsStore serves the aggregation reads for the admin dashboard. Every
// query is scoped by internal tracking key and an empty table simply yields
// an empty slice.
type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) CountSessionsByWeekday(ctx context.Context, trackingID int) ([]models.WeekdayCount, error) {
	query := `
		SELECT EXTRACT(DOW FROM start_timestamp)::int AS weekday, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1
		GROUP BY weekday
		ORDER BY weekday;
	`
	return s.bucketCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountVisitorsByWeekday(ctx context.Context, trackingID int) ([]models.WeekdayCount, error) {
	query := `
		SELECT EXTRACT(DOW FROM created_at)::int AS weekday, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY weekday
		ORDER BY weekday;
	`
	return s.bucketCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountSessionsByHour(ctx context.Context, trackingID int) ([]models.HourCount, error) {
	query := `
		SELECT EXTRACT(HOUR FROM start_timestamp)::int AS hour, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1
		GROUP BY hour
		ORDER BY hour;
	`
	return s.hourCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountVisitorsByHour(ctx context.Context, trackingID int) ([]models.HourCount, error) {
	query := `
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY hour
		ORDER BY hour;
	`
	return s.hourCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountVisitorsByOS(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT ua_os, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY ua_os;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountVisitorsByBrowser(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT ua_browser, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY ua_browser;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountVisitorsByDevice(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT ua_device, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY ua_device;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountSessionsByPathname(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT pathname, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1
		GROUP BY pathname;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountSessionsByTitle(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT title, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1
		GROUP BY title;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountSessionsByCountry(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT country_code, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1 AND country_code IS NOT NULL
		GROUP BY country_code;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) CountSessionsByReferral(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT referral, COUNT(id)
		FROM sessions
		WHERE tracking_id = $1 AND referral IS NOT NULL
		GROUP BY referral;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) ListReferers(ctx context.Context, trackingID int) ([]models.FieldCount, error) {
	query := `
		SELECT referer, COUNT(id)
		FROM visitors
		WHERE tracking_id = $1
		GROUP BY referer;
	`
	return s.fieldCounts(ctx, query, trackingID)
}

func (s *StatsStore) fieldCounts(ctx context.Context, query string, trackingID int) ([]models.FieldCount, error) {
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped counts: %w", err)
	}
	defer rows.Close()

	counts := []models.FieldCount{}
	for rows.Next() {
		var c models.FieldCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error scanning counts: %w", err)
	}

	return counts, nil
}

func (s *StatsStore) bucketCounts(ctx context.Context, query string, trackingID int) ([]models.WeekdayCount, error) {
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekday counts: %w", err)
	}
	defer rows.Close()

	counts := []models.WeekdayCount{}
	for rows.Next() {
		var c models.WeekdayCount
		if err := rows.Scan(&c.Weekday, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan weekday row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error scanning weekday counts: %w", err)
	}

	return counts, nil
}

func (s *StatsStore) hourCounts(ctx context.Context, query string, trackingID int) ([]models.HourCount, error) {
	rows, err := s.db.QueryContext(ctx, query, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly counts: %w", err)
	}
	defer rows.Close()

	counts := []models.HourCount{}
	for rows.Next() {
		var c models.HourCount
		if err := rows.Scan(&c.Hour, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hour row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error scanning hourly counts: %w", err)
	}

	return counts, nil
}
