// Package usage enforces the free plan's daily AI query allowance.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/store"
)

// DateLayout is the calendar-day format of UsageCounter.Date.
const DateLayout = "2006-01-02"

// TierSource reports an account's current subscription.
type TierSource interface {
	Current(ctx context.Context, accountID string) (models.Subscription, error)
}

// Report is the usage summary shown next to the AI features.
type Report struct {
	Tier      models.Tier `json:"tier"`
	Date      string      `json:"date"`
	Count     int         `json:"count"`
	Limit     int         `json:"limit"`     // models.Unlimited for pro
	Remaining int         `json:"remaining"` // models.Unlimited for pro
	Unlimited bool        `json:"unlimited"`
}

// Gate decides whether an account may issue another AI request today.
type Gate struct {
	store  store.Store
	tiers  TierSource
	limit  int
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger

	// mu serializes check-and-increment within this process; the store
	// transaction covers other processes sharing the database.
	mu sync.Mutex
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLocation sets the time zone whose calendar day resets the counter.
func WithLocation(loc *time.Location) Option {
	return func(g *Gate) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// NewGate returns a Gate enforcing the free plan limit.
func NewGate(s store.Store, tiers TierSource, opts ...Option) *Gate {
	g := &Gate{
		store:  s,
		tiers:  tiers,
		limit:  models.FreePlan.DailyAIQueryLimit,
		now:    time.Now,
		loc:    time.Local,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit is the daily allowance of a non-pro account.
func (g *Gate) Limit() int { return g.limit }

// CheckLimit reports whether the account may make another AI request. For
// non-pro accounts a counter from an earlier day is reset and persisted.
func (g *Gate) CheckLimit(ctx context.Context, accountID string) (bool, error) {
	sub, err := g.tiers.Current(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	if sub.IsPro() {
		return true, nil
	}

	counter, err := g.normalize(ctx, accountID)
	if err != nil {
		return false, err
	}
	return counter.Count < g.limit, nil
}

// Increment records one AI request. It is a no-op for pro accounts and
// never pushes the counter past the free limit.
func (g *Gate) Increment(ctx context.Context, accountID string) error {
	sub, err := g.tiers.Current(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}
	if sub.IsPro() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	_, err = g.consume(ctx, accountID)
	return err
}

// TryConsume checks the limit and records the request in one step. It
// returns false, without counting, when the allowance is used up.
func (g *Gate) TryConsume(ctx context.Context, accountID string) (bool, error) {
	sub, err := g.tiers.Current(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	if sub.IsPro() {
		return true, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	ok, err := g.consume(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !ok {
		g.logger.Info("daily ai limit reached", zap.String("account", accountID), zap.Int("limit", g.limit))
	}
	return ok, nil
}

// Usage returns today's counter for the account.
func (g *Gate) Usage(ctx context.Context, accountID string) (Report, error) {
	sub, err := g.tiers.Current(ctx, accountID)
	if err != nil {
		return Report{}, fmt.Errorf("load subscription: %w", err)
	}
	counter, err := g.normalize(ctx, accountID)
	if err != nil {
		return Report{}, err
	}

	r := Report{Tier: sub.Tier, Date: counter.Date, Count: counter.Count}
	if sub.IsPro() {
		r.Limit, r.Remaining, r.Unlimited = models.Unlimited, models.Unlimited, true
		return r, nil
	}
	r.Limit = g.limit
	r.Remaining = max(g.limit-counter.Count, 0)
	return r, nil
}

func (g *Gate) today() string {
	return g.now().In(g.loc).Format(DateLayout)
}

// normalize returns today's counter, resetting and persisting a stale one.
func (g *Gate) normalize(ctx context.Context, accountID string) (models.UsageCounter, error) {
	today := g.today()
	var out models.UsageCounter
	err := g.store.Update(ctx, store.UsageKey(accountID), func(current []byte, found bool) ([]byte, error) {
		counter, fresh := decodeCounter(current, found, today)
		out = counter
		if !fresh {
			return nil, nil
		}
		return json.Marshal(counter)
	})
	if err != nil {
		return models.UsageCounter{}, fmt.Errorf("normalize usage counter: %w", err)
	}
	return out, nil
}

var errLimitReached = errors.New("usage: limit reached")

// consume increments today's counter unless it already reached the limit.
func (g *Gate) consume(ctx context.Context, accountID string) (bool, error) {
	today := g.today()
	err := g.store.Update(ctx, store.UsageKey(accountID), func(current []byte, found bool) ([]byte, error) {
		counter, _ := decodeCounter(current, found, today)
		if counter.Count >= g.limit {
			return nil, errLimitReached
		}
		counter.Count++
		return json.Marshal(counter)
	})
	if errors.Is(err, errLimitReached) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("increment usage counter: %w", err)
	}
	return true, nil
}

// decodeCounter returns the stored counter when it belongs to today, or a
// zeroed counter for today with fresh set. Unreadable records count as stale.
func decodeCounter(current []byte, found bool, today string) (models.UsageCounter, bool) {
	if found {
		var c models.UsageCounter
		if err := json.Unmarshal(current, &c); err == nil && c.Date == today && c.Count >= 0 {
			return c, false
		}
	}
	return models.UsageCounter{Count: 0, Date: today}, true
}
