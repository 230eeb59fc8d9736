package finance

import "github.com/01moynul/finmanager-golang/internal/models"

// MockTransactions returns the demo ledger, newest first.
func MockTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "1", Date: "Oct 24, 2023", Merchant: "Uber Ride", Category: "Transport", Amount: 24.50, Status: "Completed", Type: models.TransactionExpense, Logo: "directions_car"},
		{ID: "2", Date: "Oct 23, 2023", Merchant: "Stripe Payout", Category: "Income", Amount: 1200.00, Status: "Pending", Type: models.TransactionIncome, Logo: "payments", LogoColor: "#635BFF"},
		{ID: "3", Date: "Oct 22, 2023", Merchant: "Amazon AWS", Category: "Software", Amount: 64.00, Status: "Completed", Type: models.TransactionExpense, Logo: "cloud"},
		{ID: "4", Date: "Oct 21, 2023", Merchant: "Starbucks", Category: "Dining", Amount: 12.50, Status: "Completed", Type: models.TransactionExpense, Logo: "coffee"},
		{ID: "5", Date: "Oct 20, 2023", Merchant: "Netflix", Category: "Subscription", Amount: 15.99, Status: "Completed", Type: models.TransactionExpense, Logo: "movie", LogoColor: "#E50914"},
		{ID: "6", Date: "Oct 19, 2023", Merchant: "Whole Foods", Category: "Groceries", Amount: 84.20, Status: "Completed", Type: models.TransactionExpense, Logo: "shopping_bag"},
		{ID: "7", Date: "Oct 18, 2023", Merchant: "Shell Station", Category: "Transport", Amount: 45.00, Status: "Completed", Type: models.TransactionExpense, Logo: "local_gas_station"},
	}
}

// MockBudgets returns the demo budgets.
func MockBudgets() []models.Budget {
	return []models.Budget{
		{ID: "1", Category: "Groceries", Spent: 450, Total: 600, Type: "Monthly", Icon: "shopping_cart", ColorClass: "orange"},
		{ID: "2", Category: "Housing", Spent: 1800, Total: 1800, Type: "Fixed", Icon: "home", ColorClass: "blue"},
		{ID: "3", Category: "Transport", Spent: 120, Total: 200, Type: "Variable", Icon: "directions_car", ColorClass: "purple"},
		{ID: "4", Category: "Entertainment", Spent: 330, Total: 300, Type: "Variable", Icon: "movie", ColorClass: "red"},
		{ID: "5", Category: "Utilities", Spent: 150, Total: 150, Type: "Fixed", Icon: "bolt", ColorClass: "cyan"},
	}
}

// InitialInsights returns the insight cards shown before any are generated.
func InitialInsights() []models.AIInsight {
	return []models.AIInsight{
		{ID: "1", Type: "warning", Title: "Subscription Alert", Description: "You have 2 unused subscriptions (Gym, Magazine). Cancel to save $25/mo.", ActionLabel: "Review"},
		{ID: "2", Type: "trend", Title: "Dining Out Trend", Description: "Restaurant spend is up 15%. Consider cooking at home this weekend.", ActionLabel: "Set Limit"},
		{ID: "3", Type: "opportunity", Title: "Savings Opportunity", Description: "Moving $50 to a high-yield savings account could earn you 4.5% APY.", ActionLabel: "Transfer", SecondaryActionLabel: "Later"},
	}
}
