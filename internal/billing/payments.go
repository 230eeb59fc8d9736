package billing

import (
	"context"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// PaymentProvider creates hosted checkout and billing-portal pages.
// Tier changes never come from these calls directly; they arrive later as
// Events confirmed by the provider.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, accountID string, plan models.PlanDefinition) (url string, err error)
	CreatePortalSession(ctx context.Context, accountID string, sub models.Subscription) (url string, err error)
}

// EventSink receives provider-confirmed events.
type EventSink interface {
	Apply(ctx context.Context, ev Event) (models.Subscription, error)
}
