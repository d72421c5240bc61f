package server

import (
	"walletwhiz/internal/handlers"

	"github.com/labstack/echo/v4"
)

// Handlers holds one handler per resource.
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Settings    *handlers.SettingsHandler
	Category    *handlers.CategoryHandler
	Transaction *handlers.TransactionHandler
	Budget      *handlers.BudgetHandler
	Goal        *handlers.GoalHandler
	Template    *handlers.TemplateHandler
	Insight     *handlers.InsightHandler
	Report      *handlers.ReportHandler
	Data        *handlers.DataHandler
	Lending     *handlers.LendingHandler
	Recurring   *handlers.RecurringHandler
}

func NewHandlers(s *Services, health *handlers.HealthHandler) *Handlers {
	return &Handlers{
		Health:      health,
		Auth:        handlers.NewAuthHandler(s.Auth),
		Settings:    handlers.NewSettingsHandler(s.Settings, s.Password, s.Audit),
		Category:    handlers.NewCategoryHandler(s.Category),
		Transaction: handlers.NewTransactionHandler(s.Transaction, s.Tag, s.Settings),
		Budget:      handlers.NewBudgetHandler(s.Budget),
		Goal:        handlers.NewGoalHandler(s.Goal),
		Template:    handlers.NewTemplateHandler(s.Template),
		Insight:     handlers.NewInsightHandler(s.Insight),
		Report:      handlers.NewReportHandler(s.Report),
		Data:        handlers.NewDataHandler(s.Import, s.Export, s.Backup, s.Audit),
		Lending:     handlers.NewLendingHandler(s.Lending, s.Settings),
		Recurring:   handlers.NewRecurringHandler(s.Recurring, s.Processor),
	}
}

// RegisterRoutes mounts the public and the authenticated API on e.
func RegisterRoutes(e *echo.Echo, h *Handlers, requireAuth echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)

	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout, requireAuth)

	api := e.Group("", requireAuth)

	api.GET("/me", h.Settings.GetProfile)
	api.GET("/me/settings", h.Settings.GetSettings)
	api.PATCH("/me/settings", h.Settings.UpdateSettings)
	api.POST("/me/password", h.Settings.ChangePassword)
	api.GET("/me/activity", h.Settings.GetActivity)
	api.GET("/currencies", h.Settings.ListCurrencies)

	api.GET("/categories", h.Category.ListCategories)
	api.POST("/categories", h.Category.CreateCategory)
	api.PUT("/categories/:id", h.Category.UpdateCategory)
	api.DELETE("/categories/:id", h.Category.DeleteCategory)

	api.POST("/transactions", h.Transaction.CreateTransaction)
	api.GET("/transactions", h.Transaction.ListTransactions)
	api.POST("/transactions/check-duplicates", h.Transaction.CheckDuplicates)
	api.GET("/transactions/:id", h.Transaction.GetTransaction)
	api.PATCH("/transactions/:id", h.Transaction.UpdateTransaction)
	api.DELETE("/transactions/:id", h.Transaction.DeleteTransaction)
	api.GET("/tags", h.Transaction.ListTags)
	api.GET("/tags/suggest", h.Transaction.SuggestTags)

	api.PUT("/budgets", h.Budget.SetBudget)
	api.GET("/budgets", h.Budget.ListBudgets)
	api.GET("/budgets/summary", h.Budget.GetSummary)
	api.GET("/budgets/suggestions", h.Budget.GetSuggestions)
	api.GET("/budgets/suggest/:categoryId", h.Budget.SuggestLimit)
	api.DELETE("/budgets/:id", h.Budget.DeleteBudget)

	api.POST("/goals", h.Goal.CreateGoal)
	api.GET("/goals", h.Goal.ListGoals)
	api.POST("/goals/:id/progress", h.Goal.AddProgress)
	api.PATCH("/goals/:id", h.Goal.UpdateGoal)
	api.POST("/goals/:id/deactivate", h.Goal.DeactivateGoal)
	api.DELETE("/goals/:id", h.Goal.DeleteGoal)

	api.POST("/templates", h.Template.CreateTemplate)
	api.GET("/templates", h.Template.ListTemplates)
	api.POST("/templates/:id/use", h.Template.UseTemplate)
	api.DELETE("/templates/:id", h.Template.DeleteTemplate)

	api.GET("/insights", h.Insight.ListInsights)
	api.POST("/insights/generate", h.Insight.GenerateInsights)
	api.POST("/insights/:id/read", h.Insight.MarkRead)

	reports := api.Group("/reports")
	reports.GET("/dashboard", h.Report.GetDashboard)
	reports.GET("/trend", h.Report.GetMonthlyTrend)
	reports.GET("/heatmap", h.Report.GetHeatmap)
	reports.GET("/achievements", h.Report.GetAchievements)
	reports.GET("/payment-methods", h.Report.GetPaymentMethods)
	reports.GET("/prediction", h.Report.PredictSpending)
	reports.GET("/monthly-summary", h.Report.GetMonthlySummary)

	data := api.Group("/data")
	data.POST("/import", h.Data.ImportCSV)
	data.GET("/export/transactions", h.Data.ExportTransactionsCSV)
	data.GET("/export/monthly-summary", h.Data.ExportMonthlySummaryCSV)
	data.GET("/export/lending", h.Data.ExportLendingCSV)
	data.GET("/backup", h.Data.Backup)
	data.POST("/restore", h.Data.Restore)
	data.POST("/cloud-backup", h.Data.CloudBackup)

	api.POST("/lending", h.Lending.CreateRecord)
	api.GET("/lending", h.Lending.ListRecords)
	api.GET("/lending/balance", h.Lending.GetBalance)
	api.POST("/lending/:id/paid", h.Lending.MarkPaid)
	api.DELETE("/lending/:id", h.Lending.DeleteRecord)

	api.POST("/recurring", h.Recurring.CreatePayment)
	api.GET("/recurring", h.Recurring.ListPayments)
	api.GET("/recurring/due", h.Recurring.ListDue)
	api.POST("/recurring/run", h.Recurring.RunDue)
	api.PUT("/recurring/:id/active", h.Recurring.SetActive)
	api.DELETE("/recurring/:id", h.Recurring.DeletePayment)
}
