// api/handlers/admin_handlers.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"trackwise/api/middleware"
	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/utils"
)

// AdminHandlers serves the authenticated admin surface. Every per-tracking
// endpoint goes through authorizeTracking first; an endpoint skipping that
// gate would leak other tenants' data.
type AdminHandlers struct {
	Users     store.UserRepository
	Trackings store.TrackingRepository
	Sources   store.SourceRepository
	Visitors  store.VisitorRepository
	Sessions  store.SessionRepository
	Stats     store.StatsRepository
}

func NewAdminHandlers(users store.UserRepository, trackings store.TrackingRepository, sources store.SourceRepository, visitors store.VisitorRepository, sessions store.SessionRepository, stats store.StatsRepository) *AdminHandlers {
	return &AdminHandlers{
		Users:     users,
		Trackings: trackings,
		Sources:   sources,
		Visitors:  visitors,
		Sessions:  sessions,
		Stats:     stats,
	}
}

// Authenticate only exists so the frontend can verify a credential pair; the
// actual check happens in the auth middleware.
func (h *AdminHandlers) Authenticate(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *AdminHandlers) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.SecretCode), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: failed to hash secret code: %v", err)
		respondError(c, http.StatusInternalServerError, models.MsgDatabaseError)
		return
	}

	user, err := h.Users.CreateUser(c.Request.Context(), utils.GenerateID(), hashed)
	if err != nil {
		respondPipelineError(c, "creating user", err)
		return
	}

	c.JSON(http.StatusCreated, models.CreatedUser{UserID: user.UserID, SecretCode: req.SecretCode})
}

func (h *AdminHandlers) CreateTracking(c *gin.Context) {
	var req models.CreateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	tracking := &models.NewTracking{
		TrackingID: utils.GenerateID(),
		Name:       req.Name,
		OwnerID:    c.MustGet(middleware.UserKey).(int),
	}
	if err := h.Trackings.CreateTracking(c.Request.Context(), tracking); err != nil {
		respondPipelineError(c, "creating tracking", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": tracking.TrackingID, "name": tracking.Name})
}

func (h *AdminHandlers) ListTrackings(c *gin.Context) {
	ownerID := c.MustGet(middleware.UserKey).(int)

	trackings, err := h.Trackings.ListTrackings(c.Request.Context(), ownerID)
	if err != nil {
		respondPipelineError(c, "listing trackings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackings": trackings})
}

// GetTracking returns the dashboard stats for one tracking.
func (h *AdminHandlers) GetTracking(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	name, err := h.Trackings.TrackingName(ctx, trackingKey)
	if err != nil {
		respondPipelineError(c, "getting tracking name", err)
		return
	}

	stats := models.TrackingStats{Name: name}
	if stats.SessionCountByWeekday, err = h.Stats.CountSessionsByWeekday(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by weekday", err)
		return
	}
	if stats.VisitorCountByWeekday, err = h.Stats.CountVisitorsByWeekday(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting visitors by weekday", err)
		return
	}
	if stats.SessionCountByHour, err = h.Stats.CountSessionsByHour(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by hour", err)
		return
	}
	if stats.VisitorCountByHour, err = h.Stats.CountVisitorsByHour(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting visitors by hour", err)
		return
	}
	if stats.VisitorCountByOS, err = h.Stats.CountVisitorsByOS(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting visitors by os", err)
		return
	}
	if stats.VisitorCountByBrowser, err = h.Stats.CountVisitorsByBrowser(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting visitors by browser", err)
		return
	}
	if stats.VisitorCountByDevice, err = h.Stats.CountVisitorsByDevice(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting visitors by device", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandlers) RenameTracking(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	var req models.RenameTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	if err := h.Trackings.RenameTracking(c.Request.Context(), trackingKey, req.Name); err != nil {
		respondPipelineError(c, "renaming tracking", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandlers) DeleteTracking(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	if err := h.Trackings.DeleteTracking(c.Request.Context(), trackingKey); err != nil {
		respondPipelineError(c, "deleting tracking", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TrackingCounts returns the attribution breakdowns, with direct traffic
// appended to the named sources.
func (h *AdminHandlers) TrackingCounts(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	counts := models.TrackingCounts{}
	sources, err := h.Sources.ListSources(ctx, trackingKey)
	if err != nil {
		respondPipelineError(c, "listing sources", err)
		return
	}
	direct, err := h.Sources.DirectStats(ctx, trackingKey)
	if err != nil {
		respondPipelineError(c, "counting direct traffic", err)
		return
	}
	counts.Sources = append(sources, direct)

	if counts.Paths, err = h.Stats.CountSessionsByPathname(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by pathname", err)
		return
	}
	if counts.Titles, err = h.Stats.CountSessionsByTitle(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by title", err)
		return
	}
	if counts.Refers, err = h.Stats.ListReferers(ctx, trackingKey); err != nil {
		respondPipelineError(c, "listing referers", err)
		return
	}
	if counts.Countries, err = h.Stats.CountSessionsByCountry(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by country", err)
		return
	}
	if counts.Referrals, err = h.Stats.CountSessionsByReferral(ctx, trackingKey); err != nil {
		respondPipelineError(c, "counting sessions by referral", err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

func (h *AdminHandlers) ListVisitors(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	visitors, err := h.Visitors.ListVisitors(c.Request.Context(), trackingKey)
	if err != nil {
		respondPipelineError(c, "listing visitors", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitors": visitors})
}

func (h *AdminHandlers) ListSessions(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	sessions, err := h.Sessions.ListSessions(c.Request.Context(), trackingKey)
	if err != nil {
		respondPipelineError(c, "listing sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *AdminHandlers) CreateSource(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	var req models.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.MsgInvalidBody)
		return
	}

	if err := h.Sources.CreateSource(c.Request.Context(), trackingKey, req.Name); err != nil {
		respondPipelineError(c, "creating source", err)
		return
	}

	c.Status(http.StatusCreated)
}

func (h *AdminHandlers) ListSources(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	sources, err := h.Sources.ListSources(c.Request.Context(), trackingKey)
	if err != nil {
		respondPipelineError(c, "listing sources", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *AdminHandlers) DeleteSource(c *gin.Context) {
	trackingKey, ok := h.authorizeTracking(c)
	if !ok {
		return
	}

	if err := h.Sources.DeleteSource(c.Request.Context(), trackingKey, c.Param("name")); err != nil {
		respondPipelineError(c, "deleting source", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// authorizeTracking resolves the :id path parameter and enforces ownership.
// A tracking that does not exist and one owned by someone else produce the
// same 404, so tracking ids cannot be probed.
func (h *AdminHandlers) authorizeTracking(c *gin.Context) (int, bool) {
	userKey := c.MustGet(middleware.UserKey).(int)
	trackingID := c.Param("id")

	trackingKey, ownerID, err := h.Trackings.TrackingOwner(c.Request.Context(), trackingID)
	if err != nil {
		respondPipelineError(c, "resolving tracking owner", err)
		return 0, false
	}
	if ownerID != userKey {
		log.Printf("user %d denied access to tracking %s", userKey, trackingID)
		respondError(c, http.StatusNotFound, models.MsgNotFound)
		return 0, false
	}

	return trackingKey, true
}
