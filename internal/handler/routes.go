package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, budgetHandler *BudgetHandler, expenseHandler *ExpenseHandler, billHandler *BillHandler, goalHandler *GoalHandler, debtHandler *DebtHandler, investmentHandler *InvestmentHandler, weatherHandler *WeatherHandler, dashboardHandler *DashboardHandler, receiptHandler *ReceiptHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (registration and login are public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())

	protect := []echo.MiddlewareFunc{
		authMiddleware.Authenticate(),
		middleware.RateLimitMiddleware(rateLimiter),
	}

	// Budget routes (protected)
	budget := api.Group("/budget", protect...)
	budget.GET("", budgetHandler.GetState)
	budget.PUT("/income", budgetHandler.SetIncome)
	budget.PUT("/split", budgetHandler.SetSplit)
	budget.POST("/rollover", budgetHandler.ProcessRemainder)

	// Expense routes (protected)
	expenses := api.Group("/expenses", protect...)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/recent", expenseHandler.GetRecentExpenses)
	expenses.GET("/categories", expenseHandler.GetCategoryTotals)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/:id/receipt", receiptHandler.UploadReceipt)
	expenses.GET("/:id/receipt", receiptHandler.GetReceiptURL)

	// Bill routes (protected)
	bills := api.Group("/bills", protect...)
	bills.POST("", billHandler.CreateBill)
	bills.POST("/batch", billHandler.CreateBills)
	bills.POST("/generate", billHandler.GenerateMonthlyBills)
	bills.GET("", billHandler.GetBills)
	bills.POST("/:id/pay", billHandler.PayBill)
	bills.DELETE("/:id", billHandler.DeleteBill)
	bills.GET("/reminders", billHandler.CheckReminders)
	bills.PUT("/reminders/daily", billHandler.SetDailyReminders)

	// Savings goal routes (protected)
	goals := api.Group("/goals", protect...)
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.POST("/:id/deposit", goalHandler.Deposit)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/projection", goalHandler.GetProjection)

	// Debt routes (protected)
	debts := api.Group("/debts", protect...)
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.GetDebts)
	debts.GET("/summary", debtHandler.GetSummary)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id/status", debtHandler.UpdateStatus)
	debts.POST("/:id/payments", debtHandler.RecordPayment)
	debts.GET("/:id/payments", debtHandler.GetPayments)
	debts.POST("/:id/prepayment", debtHandler.AnalyzePrepayment)

	// Investment routes (protected)
	investments := api.Group("/investments", protect...)
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.GetInvestments)
	investments.GET("/portfolio", investmentHandler.GetPortfolio)
	investments.POST("/projections/sip", investmentHandler.ProjectSIP)
	investments.POST("/projections/lumpsum", investmentHandler.ProjectLumpsum)
	investments.PUT("/risk-profile", investmentHandler.SetRiskProfile)
	investments.GET("/risk-profile", investmentHandler.GetRiskProfile)
	investments.GET("/quotes/:symbol", investmentHandler.GetQuote)
	investments.POST("/:id/transactions", investmentHandler.RecordTransaction)
	investments.PUT("/:id/value", investmentHandler.UpdateValue)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Weather routes (protected)
	weather := api.Group("/weather", protect...)
	weather.GET("", weatherHandler.GetCurrent)
	weather.GET("/history", weatherHandler.GetHistory)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard", protect...)
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	// WebSocket endpoint (token validated in the handler)
	e.GET("/ws", wsHandler.HandleWS)
}
