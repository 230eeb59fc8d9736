package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// accountMetadataKey links Stripe objects back to a FinManager account.
const accountMetadataKey = "account_id"

// ErrNoCustomer is returned when a portal is requested for an account that
// never completed a Stripe checkout.
var ErrNoCustomer = errors.New("billing: account has no billing customer")

// StripeConfig holds the Stripe settings.
type StripeConfig struct {
	SecretKey  string
	ProPriceID string
	BaseURL    string // where Checkout and the portal send the user back
}

// StripeProvider creates Stripe Checkout and Billing Portal sessions.
type StripeProvider struct {
	api    *client.API
	cfg    StripeConfig
	logger *zap.Logger
}

// NewStripeProvider returns a provider using the default Stripe backends
// unless backends is non-nil.
func NewStripeProvider(cfg StripeConfig, backends *stripe.Backends, logger *zap.Logger) *StripeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &StripeProvider{
		api:    client.New(cfg.SecretKey, backends),
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCheckoutSession starts a subscription-mode Checkout for the plan.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, accountID string, plan models.PlanDefinition) (string, error) {
	priceID := p.cfg.ProPriceID
	if priceID == "" {
		priceID = plan.ID
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(accountID),
		SuccessURL:        stripe.String(p.cfg.BaseURL + "/#/subscription?success=true"),
		CancelURL:         stripe.String(p.cfg.BaseURL + "/#/subscription?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{accountMetadataKey: accountID},
		},
	}
	params.Context = ctx
	params.AddMetadata(accountMetadataKey, accountID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe checkout session: %w", err)
	}
	p.logger.Info("stripe checkout session created", zap.String("account", accountID), zap.String("session", s.ID))
	return s.URL, nil
}

// CreatePortalSession opens the Billing Portal for the account's customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, accountID string, sub models.Subscription) (string, error) {
	if sub.CustomerID == "" {
		return "", ErrNoCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.CustomerID),
		ReturnURL: stripe.String(p.cfg.BaseURL + "/#/subscription?portal=true"),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe portal session: %w", err)
	}
	p.logger.Info("stripe portal session created", zap.String("account", accountID))
	return s.URL, nil
}

// ParseStripeEvent verifies a webhook delivery and maps it to an Event.
// ok is false for verified events that do not affect subscriptions.
func ParseStripeEvent(payload []byte, signature, secret string) (ev Event, ok bool, err error) {
	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return Event{}, false, fmt.Errorf("verify stripe webhook: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var s struct {
			Mode              string            `json:"mode"`
			ClientReferenceID string            `json:"client_reference_id"`
			Customer          expandableID      `json:"customer"`
			Subscription      expandableID      `json:"subscription"`
			Metadata          map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return Event{}, false, fmt.Errorf("decode checkout session: %w", err)
		}
		if s.Mode != "" && s.Mode != string(stripe.CheckoutSessionModeSubscription) {
			return Event{}, false, nil
		}
		return Event{
			Type:           EventCheckoutCompleted,
			AccountID:      firstNonEmpty(s.ClientReferenceID, s.Metadata[accountMetadataKey]),
			CustomerID:     string(s.Customer),
			SubscriptionID: string(s.Subscription),
		}, true, nil

	case "customer.subscription.updated", "customer.subscription.deleted":
		var s struct {
			ID               string            `json:"id"`
			Status           string            `json:"status"`
			Customer         expandableID      `json:"customer"`
			CurrentPeriodEnd int64             `json:"current_period_end"`
			Metadata         map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return Event{}, false, fmt.Errorf("decode subscription: %w", err)
		}
		out := Event{
			Type:           EventSubscriptionUpdated,
			AccountID:      s.Metadata[accountMetadataKey],
			CustomerID:     string(s.Customer),
			SubscriptionID: s.ID,
			Status:         stripeStatus(s.Status),
		}
		if s.CurrentPeriodEnd > 0 {
			out.PeriodEnd = time.Unix(s.CurrentPeriodEnd, 0).UTC()
		}
		if event.Type == "customer.subscription.deleted" {
			out.Type, out.Status = EventSubscriptionCanceled, models.StatusCanceled
		}
		return out, true, nil
	}
	return Event{}, false, nil
}

// stripeStatus folds Stripe's subscription statuses into ours.
func stripeStatus(s string) models.SubscriptionStatus {
	switch s {
	case "active", "trialing":
		return models.StatusActive
	case "past_due", "unpaid", "paused":
		return models.StatusPastDue
	case "incomplete":
		return models.StatusIncomplete
	case "canceled", "incomplete_expired":
		return models.StatusCanceled
	default:
		return models.StatusActive
	}
}

// expandableID decodes a Stripe reference that is either an ID string or
// an expanded object carrying an "id".
type expandableID string

func (e *expandableID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*e = expandableID(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}
