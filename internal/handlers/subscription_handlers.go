package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/billing"
	"github.com/01moynul/finmanager-golang/internal/models"
)

// maxWebhookBytes bounds a Stripe webhook body.
const maxWebhookBytes = 65536

// GetSubscriptionPlans lists the plans on the pricing page.
func (h *Handlers) GetSubscriptionPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": models.Plans()})
}

// GetMySubscription returns the caller's subscription and plan.
func (h *Handlers) GetMySubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sub, err := h.Billing.Subscription(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("loading subscription failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"plan":         models.PlanForTier(sub.Tier),
	})
}

type CheckoutInput struct {
	PlanID string `json:"planId" binding:"required"`
}

// CreateCheckout starts a checkout for the chosen plan and returns its URL.
func (h *Handlers) CreateCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.Billing.Checkout(c.Request.Context(), userID, input.PlanID)
	if err != nil {
		h.respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// CreatePortal opens the billing portal and returns its URL.
func (h *Handlers) CreatePortal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	url, err := h.Billing.Portal(c.Request.Context(), userID)
	if err != nil {
		h.respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// HandleStripeWebhook applies verified Stripe subscription events.
func (h *Handlers) HandleStripeWebhook(c *gin.Context) {
	if h.StripeWebhookSecret == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stripe webhooks are not configured"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Webhook body too large"})
		return
	}

	ev, ok, err := billing.ParseStripeEvent(payload, c.GetHeader("Stripe-Signature"), h.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("rejected stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if ev.AccountID == "" {
		h.Logger.Warn("stripe event without account", zap.String("event", string(ev.Type)), zap.String("subscription", ev.SubscriptionID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.Billing.HandleEvent(c.Request.Context(), ev); err != nil {
		h.Logger.Error("applying stripe event failed", zap.String("event", string(ev.Type)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handlers) respondBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrUnknownPlan), errors.Is(err, billing.ErrFreePlan):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrAlreadySubscribed),
		errors.Is(err, billing.ErrNotSubscribed),
		errors.Is(err, billing.ErrNoCustomer):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("payment provider failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
	}
}
