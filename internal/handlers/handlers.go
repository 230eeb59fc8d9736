package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/assistant"
	"github.com/01moynul/finmanager-golang/internal/auth"
	"github.com/01moynul/finmanager-golang/internal/billing"
	"github.com/01moynul/finmanager-golang/internal/finance"
	"github.com/01moynul/finmanager-golang/internal/middleware"
	"github.com/01moynul/finmanager-golang/internal/settings"
	"github.com/01moynul/finmanager-golang/internal/usage"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Auth      *auth.Service
	Settings  *settings.AISettings
	Usage     *usage.Gate
	Billing   *billing.Service
	Machine   *billing.Machine
	Assistant *assistant.Registry
	Ledger    *finance.Ledger
	Logger    *zap.Logger

	// StripeWebhookSecret enables POST /subscriptions/webhook when set.
	StripeWebhookSecret string
	// AdminUserIDs may change the installation-wide AI settings.
	AdminUserIDs []string
}

// currentUserID returns the caller set by AuthMiddleware, or writes a 401.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
