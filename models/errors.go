package models

// ErrorResponse is the uniform error body; Code mirrors the HTTP status.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Machine-readable error messages. Internal detail never reaches the client;
// these fixed codes are all it sees.
const (
	MsgNotFound         = "NOT_FOUND"
	MsgMissingSessionID = "MISSING_SESSION_ID"
	MsgInvalidBase64    = "INVALID_BASE64"
	MsgInvalidToken     = "INVALID_TOKEN"
	MsgDatabaseError    = "DATABASE_ERROR"
	MsgEnrichmentError  = "ENRICHMENT_ERROR"
	MsgInvalidBody      = "INVALID_BODY"
)

func NewError(code int, message string) ErrorResponse {
	return ErrorResponse{Code: code, Message: message}
}
