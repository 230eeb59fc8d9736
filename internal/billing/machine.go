// Package billing owns the subscription state machine and the payment
// providers that drive it.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

// BillingPeriod is the length of a subscription period.
const BillingPeriod = 30 * 24 * time.Hour

// EventType names a confirmed change reported by a payment provider.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout.completed"
	EventSubscriptionUpdated  EventType = "subscription.updated"
	EventSubscriptionCanceled EventType = "subscription.canceled"
)

// Event is a provider-confirmed subscription change for one account.
type Event struct {
	Type           EventType
	AccountID      string
	CustomerID     string
	SubscriptionID string
	Status         models.SubscriptionStatus // subscription.updated only
	PeriodEnd      time.Time                 // zero means now + BillingPeriod
}

// ErrUnknownEvent is returned by Apply for event types it does not handle.
var ErrUnknownEvent = errors.New("billing: unknown event type")

// Machine is the per-account subscription state machine. Every transition
// replaces the whole stored record.
type Machine struct {
	store  store.Store
	now    func() time.Time
	logger *zap.Logger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) MachineOption {
	return func(m *Machine) { m.logger = logger }
}

// NewMachine returns a Machine persisting to s.
func NewMachine(s store.Store, opts ...MachineOption) *Machine {
	m := &Machine{store: s, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the account's subscription. The first load creates and
// persists a free, active record whose period ends in BillingPeriod.
func (m *Machine) Current(ctx context.Context, accountID string) (models.Subscription, error) {
	var sub models.Subscription
	err := m.store.Update(ctx, store.SubscriptionKey(accountID), func(current []byte, found bool) ([]byte, error) {
		if found {
			if err := json.Unmarshal(current, &sub); err == nil {
				return nil, nil
			}
			m.logger.Warn("replacing unreadable subscription record", zap.String("account", accountID))
		}
		sub = models.Subscription{
			Tier:      models.TierFree,
			Status:    models.StatusActive,
			PeriodEnd: m.now().Add(BillingPeriod),
		}
		return json.Marshal(sub)
	})
	if err != nil {
		return models.Subscription{}, fmt.Errorf("load subscription: %w", err)
	}
	return sub, nil
}

// Upgrade moves the account to pro, active, for a new period.
func (m *Machine) Upgrade(ctx context.Context, accountID string) (models.Subscription, error) {
	sub, _, err := m.replace(ctx, accountID, func(prev models.Subscription) (models.Subscription, bool) {
		return models.Subscription{
			Tier:       models.TierPro,
			Status:     models.StatusActive,
			PeriodEnd:  m.now().Add(BillingPeriod),
			CustomerID: prev.CustomerID,
		}, true
	})
	return sub, err
}

// Downgrade moves the account to free with a period ending now. The billing
// customer is kept so a later checkout reuses it.
func (m *Machine) Downgrade(ctx context.Context, accountID string) (models.Subscription, error) {
	sub, _, err := m.replace(ctx, accountID, func(prev models.Subscription) (models.Subscription, bool) {
		return m.downgraded(prev), true
	})
	return sub, err
}

// Expire downgrades the account only if it is still a simulated pro
// subscription whose period ended before now.
func (m *Machine) Expire(ctx context.Context, accountID string, now time.Time) (models.Subscription, bool, error) {
	return m.replace(ctx, accountID, func(prev models.Subscription) (models.Subscription, bool) {
		if !prev.IsPro() || prev.SubscriptionID != "" || !prev.PeriodEnd.Before(now) {
			return prev, false
		}
		return m.downgraded(prev), true
	})
}

func (m *Machine) downgraded(prev models.Subscription) models.Subscription {
	return models.Subscription{
		Tier:       models.TierFree,
		Status:     models.StatusActive,
		PeriodEnd:  m.now(),
		CustomerID: prev.CustomerID,
	}
}

// Apply performs the transition confirmed by a provider event. Events for a
// provider subscription other than the stored one are ignored, so a late
// update for a deleted subscription cannot restore pro.
func (m *Machine) Apply(ctx context.Context, ev Event) (models.Subscription, error) {
	if ev.AccountID == "" {
		return models.Subscription{}, errors.New("billing: event without account")
	}

	var next func(prev models.Subscription) (models.Subscription, bool)
	switch ev.Type {
	case EventCheckoutCompleted:
		next = func(prev models.Subscription) (models.Subscription, bool) {
			return models.Subscription{
				Tier:           models.TierPro,
				Status:         models.StatusActive,
				PeriodEnd:      m.periodEnd(ev),
				CustomerID:     firstNonEmpty(ev.CustomerID, prev.CustomerID),
				SubscriptionID: ev.SubscriptionID,
			}, true
		}
	case EventSubscriptionUpdated:
		next = func(prev models.Subscription) (models.Subscription, bool) {
			if ev.Status == models.StatusCanceled {
				return m.cancel(prev, ev)
			}
			// Only a subscription confirmed by checkout can be updated.
			if prev.SubscriptionID == "" || !sameSubscription(prev, ev) {
				return prev, false
			}
			status := ev.Status
			if status == "" {
				status = models.StatusActive
			}
			return models.Subscription{
				Tier:           models.TierPro,
				Status:         status,
				PeriodEnd:      m.periodEnd(ev),
				CustomerID:     firstNonEmpty(ev.CustomerID, prev.CustomerID),
				SubscriptionID: prev.SubscriptionID,
			}, true
		}
	case EventSubscriptionCanceled:
		next = func(prev models.Subscription) (models.Subscription, bool) {
			return m.cancel(prev, ev)
		}
	default:
		return models.Subscription{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	sub, applied, err := m.replace(ctx, ev.AccountID, next)
	if err != nil {
		return models.Subscription{}, err
	}
	if !applied {
		m.logger.Info("ignored subscription event",
			zap.String("account", ev.AccountID),
			zap.String("event", string(ev.Type)),
			zap.String("subscription", ev.SubscriptionID),
		)
		return m.Current(ctx, ev.AccountID)
	}

	m.logger.Info("subscription changed",
		zap.String("account", ev.AccountID),
		zap.String("event", string(ev.Type)),
		zap.String("tier", string(sub.Tier)),
		zap.String("status", string(sub.Status)),
	)
	return sub, nil
}

func (m *Machine) cancel(prev models.Subscription, ev Event) (models.Subscription, bool) {
	if !sameSubscription(prev, ev) {
		return prev, false
	}
	return m.downgraded(prev), true
}

// sameSubscription reports whether ev refers to the stored provider
// subscription. Events without a subscription id match any record.
func sameSubscription(prev models.Subscription, ev Event) bool {
	return ev.SubscriptionID == "" || ev.SubscriptionID == prev.SubscriptionID
}

// AccountSubscription pairs a stored subscription with its account.
type AccountSubscription struct {
	AccountID    string
	Subscription models.Subscription
}

// List returns every stored subscription ordered by account.
func (m *Machine) List(ctx context.Context) ([]AccountSubscription, error) {
	keys, err := m.store.Keys(ctx, store.SubscriptionPrefix())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]AccountSubscription, 0, len(keys))
	for _, key := range keys {
		var sub models.Subscription
		if err := store.GetJSON(ctx, m.store, key, &sub); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			m.logger.Warn("skipping subscription record", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, AccountSubscription{
			AccountID:    strings.TrimPrefix(key, store.SubscriptionPrefix()),
			Subscription: sub,
		})
	}
	return out, nil
}

// replace rewrites the stored record inside one store transaction. When next
// declines, the record is left untouched and applied is false.
func (m *Machine) replace(ctx context.Context, accountID string, next func(prev models.Subscription) (models.Subscription, bool)) (sub models.Subscription, applied bool, err error) {
	err = m.store.Update(ctx, store.SubscriptionKey(accountID), func(current []byte, found bool) ([]byte, error) {
		var prev models.Subscription
		if found {
			// An unreadable record is simply replaced.
			_ = json.Unmarshal(current, &prev)
		}
		sub, applied = next(prev)
		if !applied {
			return nil, nil
		}
		return json.Marshal(sub)
	})
	if err != nil {
		return models.Subscription{}, false, fmt.Errorf("save subscription: %w", err)
	}
	return sub, applied, nil
}

func (m *Machine) periodEnd(ev Event) time.Time {
	if ev.PeriodEnd.IsZero() {
		return m.now().Add(BillingPeriod)
	}
	return ev.PeriodEnd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
