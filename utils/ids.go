package utils

import "github.com/google/uuid"

// GenerateID produces an opaque, URL-safe public identifier. Visitor, session,
// tracking and user ids all come from this one generator; uniqueness relies on
// UUIDv4 collision resistance, nothing deduplicates across entity kinds.
func GenerateID() string {
	return uuid.NewString()
}
