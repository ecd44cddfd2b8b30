package models

import "time"

// NewVisitor is the insert payload for a first-seen browser identity.
// SourceID nil means direct traffic. The three UA fields come from the
// classifier, never from the client.
type NewVisitor struct {
	VisitorID  string
	TrackingID int
	SourceID   *int
	Referer    string
	UserAgent  string
	UADevice   string
	UAOS       string
	UABrowser  string
}

type VisitorInfo struct {
	ID         string    `json:"id"`
	Referer    string    `json:"referer"`
	OS         string    `json:"os"`
	Device     string    `json:"device"`
	Browser    string    `json:"browser"`
	CreatedAt  time.Time `json:"created_at"`
	SourceName *string   `json:"source_name"`
}
