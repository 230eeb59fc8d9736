// Package finance serves the dashboard's transactions, budgets, insights
// and reports.
package finance

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// InsightGenerator turns financial data into advice text. It never fails;
// errors are already turned into fallback text.
type InsightGenerator interface {
	Insights(ctx context.Context, transactions []models.Transaction, budgets []models.Budget) string
}

// Ledger serves every account the demo data set and remembers the last
// generated tip per account.
type Ledger struct {
	generator InsightGenerator

	mu   sync.RWMutex
	tips map[string]models.AIInsight
}

// NewLedger returns a ledger that generates tips with generator.
func NewLedger(generator InsightGenerator) *Ledger {
	return &Ledger{generator: generator, tips: make(map[string]models.AIInsight)}
}

// Transactions returns the account's transactions, newest first.
func (l *Ledger) Transactions(context.Context, string) []models.Transaction {
	return MockTransactions()
}

// Budgets returns the account's budgets.
func (l *Ledger) Budgets(context.Context, string) []models.Budget {
	return MockBudgets()
}

// Insights returns the latest generated tip, if any, followed by the
// standing insight cards.
func (l *Ledger) Insights(_ context.Context, accountID string) []models.AIInsight {
	l.mu.RLock()
	tip, ok := l.tips[accountID]
	l.mu.RUnlock()

	out := InitialInsights()
	if ok {
		out = append([]models.AIInsight{tip}, out...)
	}
	return out
}

// GenerateInsights asks the model for tips over the account's data and
// keeps the answer as the account's latest tip.
func (l *Ledger) GenerateInsights(ctx context.Context, accountID string) models.AIInsight {
	text := l.generator.Insights(ctx, l.Transactions(ctx, accountID), l.Budgets(ctx, accountID))
	tip := models.AIInsight{
		ID:          uuid.NewString(),
		Type:        "opportunity",
		Title:       "AI Financial Tips",
		Description: text,
	}

	l.mu.Lock()
	l.tips[accountID] = tip
	l.mu.Unlock()
	return tip
}
