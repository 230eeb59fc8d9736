package models

// UsageCounter is the per-account daily AI invocation counter
// stored under 'finmanager_ai_usage:<id>'.
type UsageCounter struct {
	Count int    `json:"count"`
	Date  string `json:"date"` // calendar day, YYYY-MM-DD
}
