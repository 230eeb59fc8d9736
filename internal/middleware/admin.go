package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextRole is set to "administrator" for callers that pass AdminMiddleware.
const ContextRole = "userRole"

// AdminMiddleware lets only the listed user IDs through. It guards the
// installation-wide settings and must run after AuthMiddleware.
func AdminMiddleware(adminIDs []string) gin.HandlerFunc {
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		if id != "" {
			admins[id] = true
		}
	}

	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// 2. Check permission
		if !admins[userID] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: administrator role required"})
			return
		}

		// 3. Success! Add role to context and proceed.
		c.Set(ContextRole, "administrator")
		c.Next()
	}
}
