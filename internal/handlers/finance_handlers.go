package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/finance"
)

// GetTransactions lists the caller's transactions.
func (h *Handlers) GetTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": h.Ledger.Transactions(c.Request.Context(), userID)})
}

// GetBudgets returns the caller's budgets with utilisation.
func (h *Handlers) GetBudgets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, finance.Overview(h.Ledger.Budgets(c.Request.Context(), userID)))
}

// GetInsights returns the insight cards for the budget page.
func (h *Handlers) GetInsights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": h.Ledger.Insights(c.Request.Context(), userID)})
}

// GenerateInsights asks the model for fresh tips. Pro only.
func (h *Handlers) GenerateInsights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if !h.consumeAIQuery(c, userID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": h.Ledger.GenerateInsights(c.Request.Context(), userID)})
}

// GetReport summarises spending by category. Pro only.
func (h *Handlers) GetReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, finance.BuildReport(h.Ledger.Transactions(c.Request.Context(), userID)))
}

// ExportTransactionsCSV streams the caller's transactions as CSV. Pro only.
func (h *Handlers) ExportTransactionsCSV(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Status(http.StatusOK)
	if err := finance.WriteCSV(c.Writer, h.Ledger.Transactions(c.Request.Context(), userID)); err != nil {
		h.Logger.Error("csv export failed", zap.String("user", userID), zap.Error(err))
	}
}
