package billing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

var (
	// ErrUnknownPlan is returned for a plan ID outside the catalogue.
	ErrUnknownPlan = errors.New("billing: unknown plan")
	// ErrFreePlan is returned when checkout is requested for the free plan.
	ErrFreePlan = errors.New("billing: the free plan needs no checkout")
	// ErrAlreadySubscribed is returned when a pro account starts another checkout.
	ErrAlreadySubscribed = errors.New("billing: account is already on the pro plan")
	// ErrNotSubscribed is returned when a free account opens the billing portal.
	ErrNotSubscribed = errors.New("billing: account has no paid subscription")
)

// Service is the subscription API used by the HTTP layer.
type Service struct {
	machine  *Machine
	payments PaymentProvider
	logger   *zap.Logger
}

// NewService wires the state machine to a payment provider.
func NewService(machine *Machine, payments PaymentProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{machine: machine, payments: payments, logger: logger}
}

// Subscription returns the account's current subscription.
func (s *Service) Subscription(ctx context.Context, accountID string) (models.Subscription, error) {
	return s.machine.Current(ctx, accountID)
}

// Checkout returns the hosted checkout URL for planID.
func (s *Service) Checkout(ctx context.Context, accountID, planID string) (string, error) {
	plan, ok := models.PlanByID(planID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	if plan.Tier != models.TierPro {
		return "", ErrFreePlan
	}

	sub, err := s.machine.Current(ctx, accountID)
	if err != nil {
		return "", err
	}
	if sub.IsPro() {
		return "", ErrAlreadySubscribed
	}

	url, err := s.payments.CreateCheckoutSession(ctx, accountID, plan)
	if err != nil {
		s.logger.Error("checkout failed", zap.String("account", accountID), zap.Error(err))
		return "", err
	}
	return url, nil
}

// Portal returns the billing portal URL for a pro account.
func (s *Service) Portal(ctx context.Context, accountID string) (string, error) {
	sub, err := s.machine.Current(ctx, accountID)
	if err != nil {
		return "", err
	}
	if !sub.IsPro() {
		return "", ErrNotSubscribed
	}

	url, err := s.payments.CreatePortalSession(ctx, accountID, sub)
	if err != nil {
		s.logger.Error("billing portal failed", zap.String("account", accountID), zap.Error(err))
		return "", err
	}
	return url, nil
}

// HandleEvent applies a provider-confirmed event.
func (s *Service) HandleEvent(ctx context.Context, ev Event) (models.Subscription, error) {
	return s.machine.Apply(ctx, ev)
}
