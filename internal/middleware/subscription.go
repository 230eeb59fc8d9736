package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// SubscriptionSource reports an account's current subscription.
type SubscriptionSource interface {
	Current(ctx context.Context, accountID string) (models.Subscription, error)
}

// ProMiddleware lets only pro accounts through. It must run after AuthMiddleware.
func ProMiddleware(subs SubscriptionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		sub, err := subs.Current(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load subscription"})
			return
		}
		if !sub.IsPro() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "This feature requires the Pro plan",
				"upgrade": models.ProPlan.ID,
			})
			return
		}
		c.Next()
	}
}
