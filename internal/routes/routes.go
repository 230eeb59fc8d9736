package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/finmanager-golang/internal/handlers"
	"github.com/01moynul/finmanager-golang/internal/logging"
	"github.com/01moynul/finmanager-golang/internal/middleware"
)

// CORSMiddleware tells the browser that the dashboard at origin may call us.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Allow only the configured frontend
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)

		// 2. Allow standard security credentials
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// 3. Allow the headers we actually use (specifically "Authorization" for API tokens)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")

		// 4. Allow the HTTP methods we use in our API
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		// 5. Answer the preflight request
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, corsOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinLogger(h.Logger), logging.GinRecovery(h.Logger))

	// --- APPLY THE CORS GUARD ---
	router.Use(CORSMiddleware(corsOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/register", h.Register)

		// --- Public Subscription Routes ---
		v1.GET("/subscriptions/plans", h.GetSubscriptionPlans)
		v1.POST("/subscriptions/webhook", h.HandleStripeWebhook)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.Auth))
		{
			auth.POST("/auth/logout", h.Logout)
			auth.GET("/auth/session", h.GetSession)

			// --- Settings ---
			auth.PUT("/settings/password", h.UpdatePassword)
			auth.GET("/settings/ai", h.GetAISettings)

			// --- Subscription ---
			auth.GET("/subscriptions/me", h.GetMySubscription)
			auth.POST("/subscriptions/checkout", h.CreateCheckout)
			auth.POST("/subscriptions/portal", h.CreatePortal)

			// --- AI Assistant ---
			auth.GET("/ai/usage", h.GetAIUsage)
			auth.POST("/ai/ask", h.AskAI)
			auth.GET("/ai/chat", h.GetChat)
			auth.POST("/ai/chat", h.ChatAI)
			auth.DELETE("/ai/chat", h.ResetChat)

			// --- Finance ---
			auth.GET("/transactions", h.GetTransactions)
			auth.GET("/budgets", h.GetBudgets)
			auth.GET("/insights", h.GetInsights)
		}

		// --- Pro-Only Routes ---
		pro := v1.Group("/")
		pro.Use(middleware.AuthMiddleware(h.Auth))
		pro.Use(middleware.ProMiddleware(h.Machine))
		{
			pro.POST("/insights/generate", h.GenerateInsights)
			pro.GET("/reports", h.GetReport)
			pro.GET("/reports/export.csv", h.ExportTransactionsCSV)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/")
		admin.Use(middleware.AuthMiddleware(h.Auth))
		admin.Use(middleware.AdminMiddleware(h.AdminUserIDs))
		{
			admin.PUT("/settings/ai", h.UpdateAISettings)
		}
	}

	return router
}
