package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/tracker"
)

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.NewError(status, message))
}

// respondPipelineError maps pipeline failures to the uniform error body:
// absent rows to 404, enrichment failures and storage failures to distinct
// 500 codes. The underlying error is logged here and never leaks out.
func respondPipelineError(c *gin.Context, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)

	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, models.MsgNotFound)
	case errors.Is(err, tracker.ErrEnrichment):
		respondError(c, http.StatusInternalServerError, models.MsgEnrichmentError)
	default:
		respondError(c, http.StatusInternalServerError, models.MsgDatabaseError)
	}
}
