package models

import "time"

// NewSession is the insert payload for one browsing session. StartTimestamp
// is client-supplied; CreatedAt is set by the store. The location fields are
// resolved server-side from the client IP and stay nil when the geo locator
// has no answer.
type NewSession struct {
	SessionID      string
	VisitorID      int
	TrackingID     int
	StartTimestamp time.Time
	Title          string
	Pathname       string
	Referral       *string
	CountryCode    *string
	CityName       *string
	ContinentCode  *string
}

type SessionInfo struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Pathname       string     `json:"pathname"`
	StartTimestamp time.Time  `json:"start_timestamp"`
	EndTimestamp   *time.Time `json:"end_timestamp"`
}

type SessionStartRequest struct {
	Timestamp float64 `json:"timestamp" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Pathname  string  `json:"pathname" binding:"required"`
	Referral  *string `json:"referral"`
}

type SessionEndRequest struct {
	Timestamp float64 `json:"timestamp" binding:"required"`
}

type EventRequest struct {
	Type   string `json:"type" binding:"required"`
	Target string `json:"target" binding:"required"`
}
