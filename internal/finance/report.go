package finance

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/gosimple/slug"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// --- Budget overview ---

// BudgetStatus is one budget with its utilisation.
type BudgetStatus struct {
	models.Budget
	Percent   float64 `json:"percent"` // capped at 100
	Remaining float64 `json:"remaining"`
	Over      bool    `json:"over"`
}

// BudgetOverview sums the budgets for the stats cards.
type BudgetOverview struct {
	TotalBudgeted float64        `json:"totalBudgeted"`
	TotalSpent    float64        `json:"totalSpent"`
	Remaining     float64        `json:"remaining"`
	Budgets       []BudgetStatus `json:"budgets"`
}

// Overview computes utilisation for every budget.
func Overview(budgets []models.Budget) BudgetOverview {
	out := BudgetOverview{Budgets: make([]BudgetStatus, 0, len(budgets))}
	for _, b := range budgets {
		status := BudgetStatus{Budget: b, Remaining: round2(b.Total - b.Spent), Over: b.Spent > b.Total}
		if b.Total > 0 {
			status.Percent = round2(math.Min(b.Spent/b.Total*100, 100))
		} else if b.Spent > 0 {
			status.Percent = 100
		}
		out.Budgets = append(out.Budgets, status)
		out.TotalBudgeted += b.Total
		out.TotalSpent += b.Spent
	}
	out.TotalBudgeted = round2(out.TotalBudgeted)
	out.TotalSpent = round2(out.TotalSpent)
	out.Remaining = round2(out.TotalBudgeted - out.TotalSpent)
	return out
}

// --- Spending report ---

// CategorySpend is the expense total of one category.
type CategorySpend struct {
	Key      string  `json:"key"`
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"` // percent of all expenses
}

// Report summarises a set of transactions.
type Report struct {
	Income     float64         `json:"income"`
	Expenses   float64         `json:"expenses"`
	Net        float64         `json:"net"`
	Categories []CategorySpend `json:"categories"`
}

// BuildReport groups expenses by category, largest first. Categories that
// differ only in case or punctuation are merged under one slug key.
func BuildReport(transactions []models.Transaction) Report {
	var r Report
	byKey := make(map[string]*CategorySpend)
	for _, t := range transactions {
		if t.Type == models.TransactionIncome {
			r.Income += t.Amount
			continue
		}
		r.Expenses += t.Amount

		key := slug.Make(t.Category)
		if key == "" {
			key = "uncategorized"
		}
		c, ok := byKey[key]
		if !ok {
			c = &CategorySpend{Key: key, Category: t.Category}
			byKey[key] = c
		}
		c.Total += t.Amount
		c.Count++
	}

	r.Categories = make([]CategorySpend, 0, len(byKey))
	for _, c := range byKey {
		c.Total = round2(c.Total)
		if r.Expenses > 0 {
			c.Share = round2(c.Total / r.Expenses * 100)
		}
		r.Categories = append(r.Categories, *c)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if r.Categories[i].Total != r.Categories[j].Total {
			return r.Categories[i].Total > r.Categories[j].Total
		}
		return r.Categories[i].Key < r.Categories[j].Key
	})

	r.Income = round2(r.Income)
	r.Expenses = round2(r.Expenses)
	r.Net = round2(r.Income - r.Expenses)
	return r
}

// --- CSV export ---

var csvHeader = []string{"id", "date", "merchant", "category", "type", "status", "amount"}

// WriteCSV writes transactions as CSV with a header row.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range transactions {
		record := []string{
			t.ID,
			t.Date,
			t.Merchant,
			t.Category,
			t.Type,
			t.Status,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
