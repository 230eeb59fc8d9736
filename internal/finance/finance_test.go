package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/finmanager-golang/internal/models"
)

func TestMockData(t *testing.T) {
	assert.Len(t, MockTransactions(), 7)
	assert.Len(t, MockBudgets(), 5)
	assert.Len(t, InitialInsights(), 3)

	txns := MockTransactions()
	txns[0].Merchant = "changed"
	assert.Equal(t, "Uber Ride", MockTransactions()[0].Merchant, "each call returns a fresh copy")
}

func TestBuildReport(t *testing.T) {
	r := BuildReport(MockTransactions())

	assert.Equal(t, 1200.0, r.Income)
	assert.Equal(t, 246.19, r.Expenses)
	assert.Equal(t, 953.81, r.Net)
	assert.Equal(t, []CategorySpend{
		{Key: "groceries", Category: "Groceries", Total: 84.2, Count: 1, Share: 34.2},
		{Key: "transport", Category: "Transport", Total: 69.5, Count: 2, Share: 28.23},
		{Key: "software", Category: "Software", Total: 64, Count: 1, Share: 26},
		{Key: "subscription", Category: "Subscription", Total: 15.99, Count: 1, Share: 6.49},
		{Key: "dining", Category: "Dining", Total: 12.5, Count: 1, Share: 5.08},
	}, r.Categories)
}

func TestBuildReport_MergesCategorySpellings(t *testing.T) {
	r := BuildReport([]models.Transaction{
		{Category: "Eating Out", Amount: 10, Type: models.TransactionExpense},
		{Category: "eating out", Amount: 5, Type: models.TransactionExpense},
		{Category: "", Amount: 1, Type: models.TransactionExpense},
	})

	require.Len(t, r.Categories, 2)
	assert.Equal(t, "eating-out", r.Categories[0].Key)
	assert.Equal(t, 15.0, r.Categories[0].Total)
	assert.Equal(t, "uncategorized", r.Categories[1].Key)
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil)
	assert.Empty(t, r.Categories)
	assert.Zero(t, r.Net)
}

func TestOverview(t *testing.T) {
	o := Overview(MockBudgets())

	assert.Equal(t, 3050.0, o.TotalBudgeted)
	assert.Equal(t, 2850.0, o.TotalSpent)
	assert.Equal(t, 200.0, o.Remaining)

	byCategory := map[string]BudgetStatus{}
	for _, b := range o.Budgets {
		byCategory[b.Category] = b
	}
	assert.Equal(t, 75.0, byCategory["Groceries"].Percent)
	assert.False(t, byCategory["Groceries"].Over)
	assert.Equal(t, 100.0, byCategory["Entertainment"].Percent)
	assert.True(t, byCategory["Entertainment"].Over)
	assert.Equal(t, -30.0, byCategory["Entertainment"].Remaining)
	assert.False(t, byCategory["Housing"].Over, "spending exactly the budget is not over")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.Transaction{
		{ID: "1", Date: "Oct 24, 2023", Merchant: "Uber Ride", Category: "Transport", Type: "expense", Status: "Completed", Amount: 24.5},
		{ID: "2", Date: "Oct 23, 2023", Merchant: `Joe's "Diner"`, Category: "Dining", Type: "expense", Status: "Pending", Amount: 7},
	}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "date", "merchant", "category", "type", "status", "amount"},
		{"1", "Oct 24, 2023", "Uber Ride", "Transport", "expense", "Completed", "24.50"},
		{"2", "Oct 23, 2023", `Joe's "Diner"`, "Dining", "expense", "Pending", "7.00"},
	}, records)
}

type stubGenerator struct {
	text  string
	calls int
}

func (g *stubGenerator) Insights(_ context.Context, txns []models.Transaction, budgets []models.Budget) string {
	g.calls++
	return g.text
}

func TestLedger_GenerateInsights(t *testing.T) {
	gen := &stubGenerator{text: "- Cut dining spend by 10%."}
	l := NewLedger(gen)
	ctx := context.Background()

	assert.Len(t, l.Insights(ctx, "a"), 3)

	tip := l.GenerateInsights(ctx, "a")
	assert.Equal(t, "- Cut dining spend by 10%.", tip.Description)
	assert.NotEmpty(t, tip.ID)

	insights := l.Insights(ctx, "a")
	require.Len(t, insights, 4)
	assert.Equal(t, tip, insights[0])
	assert.Len(t, l.Insights(ctx, "b"), 3, "tips are per account")
	assert.Equal(t, 1, gen.calls)
}
