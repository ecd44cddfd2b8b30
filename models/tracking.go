package models

import "time"

// NewTracking is the insert payload for one tracked website. TrackingID is the
// public opaque identifier, OwnerID the internal key of the owning user.
type NewTracking struct {
	TrackingID string
	Name       string
	OwnerID    int
}

type CreateTrackingRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameTrackingRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateSourceRequest struct {
	Name string `json:"name" binding:"required"`
}

// TrackingSummary is one row of the owner's tracking list, with aggregate
// counts over its children. Fresh trackings report all zeroes.
type TrackingSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	VisitorCount  int64     `json:"visitor_count"`
	SessionsCount int64     `json:"sessions_count"`
	EventsCount   int64     `json:"events_count"`
	SourcesCount  int64     `json:"sources_count"`
}

// TrackingStats is the per-tracking dashboard payload.
type TrackingStats struct {
	Name string `json:"name"`

	SessionCountByWeekday []WeekdayCount `json:"session_count_by_weekday"`
	VisitorCountByWeekday []WeekdayCount `json:"visitor_count_by_weekday"`

	SessionCountByHour []HourCount `json:"session_count_by_hour"`
	VisitorCountByHour []HourCount `json:"visitor_count_by_hour"`

	VisitorCountByOS      []FieldCount `json:"visitor_count_by_os"`
	VisitorCountByBrowser []FieldCount `json:"visitor_count_by_browser"`
	VisitorCountByDevice  []FieldCount `json:"visitor_count_by_device"`
}

// TrackingCounts groups the attribution breakdowns for one tracking.
type TrackingCounts struct {
	Sources   []SourceStats `json:"sources"`
	Paths     []FieldCount  `json:"paths"`
	Titles    []FieldCount  `json:"titles"`
	Refers    []FieldCount  `json:"refers"`
	Countries []FieldCount  `json:"countries"`
	Referrals []FieldCount  `json:"referrals"`
}
