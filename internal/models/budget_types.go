package models

// Budget is a spending envelope for one category.
type Budget struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Spent      float64 `json:"spent"`
	Total      float64 `json:"total"`
	Type       string  `json:"type"` // Monthly, Fixed, Variable
	Icon       string  `json:"icon"`
	ColorClass string  `json:"colorClass"`
}
