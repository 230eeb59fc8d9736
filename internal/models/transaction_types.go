package models

// Transaction is a single ledger entry shown on the transactions view.
type Transaction struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Merchant  string  `json:"merchant"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"` // Completed, Pending
	Type      string  `json:"type"`   // income, expense
	Logo      string  `json:"logo,omitempty"`
	LogoColor string  `json:"logoColor,omitempty"`
}

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)
