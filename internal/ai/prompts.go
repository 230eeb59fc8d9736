package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// insightTransactionLimit bounds how many transactions go into an insights prompt.
const insightTransactionLimit = 10

// condensedTransaction is the subset of a transaction sent to the model.
type condensedTransaction struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// ChatPrompt flattens the system preamble, the prior history and the new
// user message into one prompt ending with a "Model:" cue.
func ChatPrompt(history []models.ChatMessage, transactions []models.Transaction, message string) string {
	condensed := make([]condensedTransaction, 0, len(transactions))
	for _, t := range transactions {
		condensed = append(condensed, condensedTransaction{
			Date:     t.Date,
			Merchant: t.Merchant,
			Amount:   t.Amount,
			Category: t.Category,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a helpful AI financial assistant named 'FinManager Assistant'.
  You have access to the user's recent transactions: %s.
  Answer questions about their spending, trends, and specific transactions.
  If the user asks about something not in the data, politely say you don't have that info.
  Keep answers concise and friendly. Format monetary values nicely.`, compactJSON(condensed))
	b.WriteString("\n\n")

	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", roleLabel(msg.Role), msg.Text)
	}
	fmt.Fprintf(&b, "User: %s\nModel:", message)
	return b.String()
}

// InsightsPrompt asks for three short recommendations over the first ten
// transactions and every budget.
func InsightsPrompt(transactions []models.Transaction, budgets []models.Budget) string {
	if len(transactions) > insightTransactionLimit {
		transactions = transactions[:insightTransactionLimit]
	}
	return fmt.Sprintf(`You are a financial advisor. Analyze the following financial data and provide 3 short, actionable bullet points for the user to improve their financial health.
Keep it under 50 words per point.
Data:
Transactions: %s
Budgets: %s`, compactJSON(transactions), compactJSON(budgets))
}

func roleLabel(role models.ChatRole) string {
	if role == models.RoleUser {
		return "User"
	}
	return "Model"
}

// compactJSON encodes v without HTML escaping so merchants like "M&S" reach
// the model unchanged.
func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
