package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// DefaultSimulatedDelay is the artificial latency of the simulated provider.
const DefaultSimulatedDelay = 1500 * time.Millisecond

// SimulatedProvider stands in for a payment provider when none is
// configured. After its delay it confirms the action itself by delivering
// the matching event to the sink: checkout upgrades, the portal cancels.
type SimulatedProvider struct {
	baseURL string
	delay   time.Duration
	sink    EventSink
	logger  *zap.Logger
}

// NewSimulatedProvider returns a provider whose URLs point back at baseURL.
func NewSimulatedProvider(baseURL string, delay time.Duration, sink EventSink, logger *zap.Logger) *SimulatedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		delay:   delay,
		sink:    sink,
		logger:  logger,
	}
}

// CreateCheckoutSession waits, upgrades the account and returns the success URL.
func (p *SimulatedProvider) CreateCheckoutSession(ctx context.Context, accountID string, plan models.PlanDefinition) (string, error) {
	p.logger.Info("simulated checkout", zap.String("account", accountID), zap.String("plan", plan.ID))
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	if _, err := p.sink.Apply(ctx, Event{Type: EventCheckoutCompleted, AccountID: accountID}); err != nil {
		return "", fmt.Errorf("confirm simulated checkout: %w", err)
	}
	return p.baseURL + "/#/subscription?success=true", nil
}

// CreatePortalSession waits, cancels the subscription and returns the portal URL.
func (p *SimulatedProvider) CreatePortalSession(ctx context.Context, accountID string, _ models.Subscription) (string, error) {
	p.logger.Info("simulated billing portal", zap.String("account", accountID))
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	if _, err := p.sink.Apply(ctx, Event{Type: EventSubscriptionCanceled, AccountID: accountID}); err != nil {
		return "", fmt.Errorf("confirm simulated cancellation: %w", err)
	}
	return p.baseURL + "/#/subscription?portal=true", nil
}

func (p *SimulatedProvider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
