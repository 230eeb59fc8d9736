package models

// Unlimited is the DailyAIQueryLimit sentinel for plans without a daily cap.
const Unlimited = -1

// PlanDefinition describes a subscription plan offered on the pricing page.
// Plans are static; they are not stored per user.
type PlanDefinition struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	Description       string   `json:"description"`
	Features          []string `json:"features"`
	DailyAIQueryLimit int      `json:"dailyAiQueryLimit"` // Unlimited (-1) for no cap
	Tier              Tier     `json:"tier"`
}

// IsUnlimited reports whether the plan has no daily AI query cap.
func (p PlanDefinition) IsUnlimited() bool {
	return p.DailyAIQueryLimit == Unlimited
}

var (
	FreePlan = PlanDefinition{
		ID:                "price_free",
		Name:              "Starter",
		Price:             0,
		Description:       "Essential tools for personal finance.",
		Features:          []string{"Basic Expense Tracking", "Monthly Budgeting", "3 AI Queries / Day", "Community Support"},
		DailyAIQueryLimit: 3,
		Tier:              TierFree,
	}

	ProPlan = PlanDefinition{
		ID:                "price_pro",
		Name:              "Pro",
		Price:             12,
		Description:       "Advanced insights and unlimited power.",
		Features:          []string{"Unlimited AI Insights", "Advanced Reports & Trends", "Export to CSV/PDF", "Priority Email Support", "Multiple Wallets"},
		DailyAIQueryLimit: Unlimited,
		Tier:              TierPro,
	}
)

// Plans returns the plan catalogue in display order.
func Plans() []PlanDefinition {
	return []PlanDefinition{FreePlan, ProPlan}
}

// PlanByID looks up a plan by its price identifier.
func PlanByID(id string) (PlanDefinition, bool) {
	for _, p := range Plans() {
		if p.ID == id {
			return p, true
		}
	}
	return PlanDefinition{}, false
}

// PlanForTier returns the plan backing a subscription tier, defaulting to Free.
func PlanForTier(tier Tier) PlanDefinition {
	if tier == TierPro {
		return ProPlan
	}
	return FreePlan
}
