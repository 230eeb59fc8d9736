package models

import "time"

// Tier is the subscription level controlling feature and quota access.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusIncomplete SubscriptionStatus = "incomplete"
)

// Subscription is the per-account record stored under 'finmanager_subscription:<id>'.
// It is always replaced as a whole, never patched field by field.
type Subscription struct {
	Tier      Tier               `json:"tier"`
	Status    SubscriptionStatus `json:"status"`
	PeriodEnd time.Time          `json:"periodEnd"`

	// Set only when the record was confirmed by a real billing provider.
	CustomerID     string `json:"customerId,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// IsPro reports whether the account is on the paid tier.
// A pro tier means unlimited AI usage regardless of the usage counter.
func (s Subscription) IsPro() bool {
	return s.Tier == TierPro
}
