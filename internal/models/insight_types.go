package models

// AIInsight is a card on the budget page. Generated insights carry the
// model's free text in Description.
type AIInsight struct {
	ID                   string   `json:"id"`
	Type                 string   `json:"type"` // warning, trend, opportunity
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Amount               *float64 `json:"amount,omitempty"`
	ActionLabel          string   `json:"actionLabel,omitempty"`
	SecondaryActionLabel string   `json:"secondaryActionLabel,omitempty"`
}
