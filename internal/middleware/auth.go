// Package middleware holds the gin guards shared by the API routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// Authenticator resolves a bearer token to its signed-in user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's ID and email in the context.
func AuthMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read the "Authorization: Bearer <token>" header.
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 2. Validate the token and its session.
		user, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		// 3. Hand the identity to the handlers.
		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Next()
	}
}
