package middleware

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"trackwise/api/models"
	"trackwise/api/store"
)

// UserKey is the gin context key under which AuthRequired stores the
// authenticated caller's internal user key.
const UserKey = "user_key"

// AuthRequired validates the Basic credential base64url("userId:secretCode")
// against the stored per-user secret. An unknown user and a wrong secret are
// indistinguishable to the caller. On success the internal user key is
// exposed to downstream handlers.
func AuthRequired(users store.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Basic ")
		if !ok {
			log.Println("AuthRequired: missing Basic authorization header")
			c.AbortWithStatusJSON(http.StatusBadRequest, models.NewError(http.StatusBadRequest, models.MsgInvalidToken))
			return
		}

		decoded, err := base64.URLEncoding.DecodeString(token)
		if err != nil {
			log.Printf("AuthRequired: invalid base64 token: %v", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, models.NewError(http.StatusBadRequest, models.MsgInvalidBase64))
			return
		}

		userID, secretCode, ok := strings.Cut(string(decoded), ":")
		if !ok {
			log.Println("AuthRequired: token missing user id / secret separator")
			c.AbortWithStatusJSON(http.StatusBadRequest, models.NewError(http.StatusBadRequest, models.MsgInvalidBase64))
			return
		}

		key, storedSecret, err := users.UserCredentials(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("AuthRequired: credential lookup failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewError(http.StatusInternalServerError, models.MsgDatabaseError))
				return
			}
			// An unknown user answers exactly like a secret mismatch so user
			// ids cannot be enumerated.
			log.Printf("AuthRequired: unknown user %s", userID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(http.StatusUnauthorized, models.MsgInvalidToken))
			return
		}

		if err := bcrypt.CompareHashAndPassword(storedSecret, []byte(secretCode)); err != nil {
			log.Printf("AuthRequired: secret mismatch for user %s", userID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(http.StatusUnauthorized, models.MsgInvalidToken))
			return
		}

		c.Set(UserKey, key)
		c.Next()
	}
}
