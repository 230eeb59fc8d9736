package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// DefaultExpirySchedule runs the sweep at the top of every hour.
const DefaultExpirySchedule = "@hourly"

// ExpirySweeper downgrades simulated pro subscriptions whose period has
// ended. Subscriptions backed by a provider are left to its webhooks.
type ExpirySweeper struct {
	machine *Machine
	now     func() time.Time
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewExpirySweeper returns a sweeper for machine.
func NewExpirySweeper(machine *Machine, logger *zap.Logger) *ExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{machine: machine, now: machine.now, logger: logger}
}

// Sweep runs one pass and returns how many accounts were downgraded.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	subs, err := s.machine.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	downgraded := 0
	for _, as := range subs {
		sub := as.Subscription
		if sub.Tier != models.TierPro || !sub.PeriodEnd.Before(now) {
			continue
		}
		if sub.SubscriptionID != "" {
			s.logger.Warn("provider subscription past its period end",
				zap.String("account", as.AccountID),
				zap.String("subscription", sub.SubscriptionID),
				zap.Time("periodEnd", sub.PeriodEnd),
			)
			continue
		}
		// The listing may be stale; Expire checks the record again.
		_, expired, err := s.machine.Expire(ctx, as.AccountID, now)
		if err != nil {
			return downgraded, fmt.Errorf("expire %s: %w", as.AccountID, err)
		}
		if expired {
			s.logger.Info("subscription expired", zap.String("account", as.AccountID))
			downgraded++
		}
	}
	return downgraded, nil
}

// Start schedules the sweep; ctx bounds each run.
func (s *ExpirySweeper) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("subscription expiry sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("subscription expiry sweep finished", zap.Int("downgraded", n))
	})
	if err != nil {
		return fmt.Errorf("could not initialize subscription expiry cron: %w", err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
