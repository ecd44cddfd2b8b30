// api/handlers/session_handlers.go
package handlers

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/tracker"
)

const (
	visitorCookie = "visitorId"
	sessionCookie = "sessionId"
)

// SessionHandlers serves the tracking-script surface: session start, session
// end and event ingestion. These endpoints carry their tenant in the
// x-tracking-id header and are not behind the admin authentication gate.
type SessionHandlers struct {
	Resolver  *tracker.VisitorResolver
	Sessions  *tracker.SessionManager
	Trackings store.TrackingRepository
}

func NewSessionHandlers(resolver *tracker.VisitorResolver, sessions *tracker.SessionManager, trackings store.TrackingRepository) *SessionHandlers {
	return &SessionHandlers{Resolver: resolver, Sessions: sessions, Trackings: trackings}
}

func (h *SessionHandlers) StartSession(c *gin.Context) {
	trackingID := c.GetHeader("x-tracking-id")
	userAgent := c.GetHeader("User-Agent")
	referer := c.GetHeader("Referer")
	// All three headers are part of the request shape, so their absence is a
	// client error, not an enrichment failure.
	if trackingID == "" || userAgent == "" || referer == "" {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	var req models.SessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	resolved, err := h.Resolver.Resolve(c.Request.Context(), tracker.VisitorRequest{
		TrackingID: trackingID,
		SourceName: optionalHeader(c, "x-source-name"),
		VisitorID:  visitorIDFromRequest(c),
		UserAgent:  userAgent,
		Referer:    referer,
	})
	if err != nil {
		respondPipelineError(c, "resolving visitor", err)
		return
	}

	sessionID, err := h.Sessions.Start(c.Request.Context(), tracker.SessionStart{
		TrackingKey: resolved.TrackingKey,
		VisitorKey:  resolved.VisitorKey,
		Timestamp:   req.Timestamp,
		Title:       req.Title,
		Pathname:    req.Pathname,
		Referral:    req.Referral,
		RemoteIP:    net.ParseIP(c.ClientIP()),
	})
	if err != nil {
		respondPipelineError(c, "starting session", err)
		return
	}

	c.SetCookie(visitorCookie, resolved.VisitorID, 0, "/", "", false, true)
	c.SetCookie(sessionCookie, sessionID, 0, "/", "", false, true)
	c.Status(http.StatusOK)
}

func (h *SessionHandlers) EndSession(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || sessionID == "" {
		respondError(c, http.StatusBadRequest, models.MsgMissingSessionID)
		return
	}

	var req models.SessionEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	if err := h.Sessions.End(c.Request.Context(), sessionID, req.Timestamp); err != nil {
		respondPipelineError(c, "ending session", err)
		return
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusOK)
}

func (h *SessionHandlers) RecordEvent(c *gin.Context) {
	trackingID := c.GetHeader("x-tracking-id")
	if trackingID == "" {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || sessionID == "" {
		respondError(c, http.StatusBadRequest, models.MsgMissingSessionID)
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	trackingKey, err := h.Trackings.IDFromTrackingID(c.Request.Context(), trackingID)
	if err != nil {
		respondPipelineError(c, "resolving tracking", err)
		return
	}

	if err := h.Sessions.RecordEvent(c.Request.Context(), sessionID, req.Type, req.Target, trackingKey); err != nil {
		respondPipelineError(c, "recording event", err)
		return
	}

	c.Status(http.StatusOK)
}

func optionalHeader(c *gin.Context, name string) *string {
	if value := c.GetHeader(name); value != "" {
		return &value
	}
	return nil
}

// visitorIDFromRequest prefers the x-visitor-id header and falls back to the
// visitorId cookie set on an earlier response.
func visitorIDFromRequest(c *gin.Context) *string {
	if id := optionalHeader(c, "x-visitor-id"); id != nil {
		return id
	}
	if id, err := c.Cookie(visitorCookie); err == nil && id != "" {
		return &id
	}
	return nil
}
