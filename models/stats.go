package models

// WeekdayCount buckets sessions or visitors by day of week, 0 = Sunday,
// matching Postgres EXTRACT(DOW ...).
type WeekdayCount struct {
	Weekday int   `json:"weekday"`
	Count   int64 `json:"count"`
}

type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// FieldCount is a generic grouped count keyed by one string dimension
// (OS family, pathname, country code, ...).
type FieldCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SourceStats is one acquisition channel with its visitor and session totals.
// The synthetic "direct" row aggregates visitors without a source.
type SourceStats struct {
	Name         string `json:"name"`
	VisitorCount int64  `json:"visitor_count"`
	SessionCount int64  `json:"session_count"`
}
