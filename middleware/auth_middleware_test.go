package middleware_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trackwise/api/middleware"
	"trackwise/api/store"
)

func newAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := mem.CreateUser(context.Background(), "user-1", hashed)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.AuthRequired(mem))
	r.POST("/authenticate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.UserKey).(int)})
	})

	return r, user.UserID
}

func basicToken(userID, secret string) string {
	return "Basic " + base64.URLEncoding.EncodeToString([]byte(userID+":"+secret))
}

func authRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/authenticate", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r, userID := newAuthRouter(t)

	w := authRequest(r, basicToken(userID, "s3cret"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":1`)
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := authRequest(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthRequiredNotBase64(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := authRequest(r, "Basic not%%base64")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BASE64")
}

func TestAuthRequiredMissingSeparator(t *testing.T) {
	r, _ := newAuthRouter(t)

	token := "Basic " + base64.URLEncoding.EncodeToString([]byte("no-colon-here"))
	w := authRequest(r, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BASE64")
}

func TestAuthRequiredUnknownUser(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := authRequest(r, basicToken("no-such-user", "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthRequiredWrongSecret(t *testing.T) {
	r, userID := newAuthRouter(t)

	w := authRequest(r, basicToken(userID, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}
