package services

import (
	"context"
	"io"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
	// CleanupExpiredTokens drops expired refresh tokens and blacklist rows.
	CleanupExpiredTokens() (int64, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
	PasswordStrength(password string) int
	ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error
}

// AuditServiceInterface records user-visible security and data events.
type AuditServiceInterface interface {
	Record(userID *uuid.UUID, action, resource, resourceID, ipAddress, userAgent string, metadata map[string]interface{})
	GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
}

type SettingsServiceInterface interface {
	GetProfile(userID uuid.UUID) (*models.User, error)
	GetSettings(userID uuid.UUID) (*models.UserSettings, error)
	UpdateSettings(userID uuid.UUID, req *dto.UpdateSettingsRequest) (*models.UserSettings, error)
	ListCurrencies() ([]models.Currency, error)
	// FormatAmount renders an amount in the user's preferred currency.
	FormatAmount(userID uuid.UUID, amount decimal.Decimal) (string, error)
}

type CategoryServiceInterface interface {
	ListCategories(userID uuid.UUID, categoryType string) ([]models.Category, error)
	GetCategory(userID, categoryID uuid.UUID) (*models.Category, error)
	CreateCategory(userID uuid.UUID, req *dto.CategoryRequest) (*models.Category, error)
	UpdateCategory(userID, categoryID uuid.UUID, req *dto.CategoryRequest) (*models.Category, error)
	DeleteCategory(userID, categoryID uuid.UUID) error
	CreateDefaultCategories(userID uuid.UUID) error
	GetOrCreateCategory(userID uuid.UUID, name, categoryType string) (*models.Category, error)
}

// CategorizerInterface picks a category from free text.
type CategorizerInterface interface {
	// MatchKeyword returns the category name, keyword and confidence of the
	// first rule whose keyword occurs in the description. The name is empty
	// when nothing matched.
	MatchKeyword(description string) (string, string, float64)
	Categorize(userID uuid.UUID, description, transactionType string) (*models.CategorizationResult, error)
}

type TagServiceInterface interface {
	ExtractTags(text string) []string
	SuggestTags(userID uuid.UUID, prefix string, limit int) ([]string, error)
	ListTags(userID uuid.UUID) ([]string, error)
}

type TransactionServiceInterface interface {
	AddTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error)
	GetTransaction(userID, transactionID uuid.UUID) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uuid.UUID) error
	// ListTransactions returns one page and the cursor for the next one,
	// empty when there are no more rows.
	ListTransactions(userID uuid.UUID, filters models.TransactionFilters, cursor string, limit int) ([]models.Transaction, string, error)
	CheckDuplicates(userID uuid.UUID, amount decimal.Decimal, description string, date time.Time) ([]models.Transaction, error)
}

// TransactionEventPublisher announces stored transactions to other
// processes.
type TransactionEventPublisher interface {
	PublishTransactionCreated(ctx context.Context, transaction *models.Transaction) error
}

type BudgetServiceInterface interface {
	SetBudget(userID uuid.UUID, req *dto.BudgetRequest) (*models.Budget, error)
	ListBudgets(userID uuid.UUID) ([]models.Budget, error)
	GetBudgetSummary(userID uuid.UUID, year int, month time.Month) ([]models.BudgetStatus, error)
	SuggestLimit(userID, categoryID uuid.UUID) (decimal.Decimal, error)
	GetSuggestions(userID uuid.UUID) ([]models.BudgetSuggestion, error)
	DeleteBudget(userID, budgetID uuid.UUID) error
}

type GoalServiceInterface interface {
	CreateGoal(userID uuid.UUID, req *dto.GoalRequest) (*models.SavingsGoal, error)
	ListActiveGoals(userID uuid.UUID) ([]models.GoalProgress, error)
	AddProgress(userID, goalID uuid.UUID, amount decimal.Decimal) (*models.GoalProgress, error)
	UpdateGoal(userID, goalID uuid.UUID, req *dto.UpdateGoalRequest) (*models.SavingsGoal, error)
	DeactivateGoal(userID, goalID uuid.UUID) error
	DeleteGoal(userID, goalID uuid.UUID) error
}

type TemplateServiceInterface interface {
	CreateTemplate(userID uuid.UUID, req *dto.TemplateRequest) (*models.TransactionTemplate, error)
	ListTemplates(userID uuid.UUID) ([]models.TransactionTemplate, error)
	UseTemplate(ctx context.Context, userID, templateID uuid.UUID, date *time.Time) (*models.Transaction, error)
	DeleteTemplate(userID, templateID uuid.UUID) error
}

type InsightServiceInterface interface {
	GenerateInsights(userID uuid.UUID) ([]models.FinancialInsight, error)
	ListInsights(userID uuid.UUID) ([]models.FinancialInsight, error)
	MarkRead(userID, insightID uuid.UUID) error
	// RefreshAll regenerates insights for every user and returns how many
	// users were refreshed.
	RefreshAll(ctx context.Context) (int, error)
	PurgeExpired() (int64, error)
}

type ReportServiceInterface interface {
	GetDashboard(userID uuid.UUID, year int, month time.Month) (*models.Dashboard, error)
	GetMonthlyTrend(userID uuid.UUID, months int) ([]models.MonthlyTotal, error)
	GetHeatmap(userID uuid.UUID, year int, month time.Month) ([]models.HeatmapDay, error)
	GetAchievements(userID uuid.UUID, year int, month time.Month) ([]models.Achievement, error)
	GetPaymentMethodStats(userID uuid.UUID) (*models.PaymentMethodStats, error)
	PredictSpending(userID uuid.UUID) (*models.SpendingPrediction, error)
	GetMonthlySummary(userID uuid.UUID, year int, month time.Month) (*models.MonthlySummary, error)
}

type ImportServiceInterface interface {
	ImportBankCSV(ctx context.Context, userID uuid.UUID, r io.Reader, opts dto.ImportOptions) (*models.ImportResult, error)
}

type ExportServiceInterface interface {
	WriteTransactionsCSV(w io.Writer, userID uuid.UUID, start, end time.Time) error
	WriteMonthlySummaryCSV(w io.Writer, userID uuid.UUID, year int, month time.Month) error
	WriteLendingCSV(w io.Writer, userID uuid.UUID) error
}

type BackupServiceInterface interface {
	CreateBackup(userID uuid.UUID) (*models.Backup, error)
	RestoreBackup(userID uuid.UUID, backup *models.Backup) (*dto.RestoreResult, error)
	BackupToCloud(ctx context.Context, userID uuid.UUID) (int, error)
}

// BackupSink stores transaction rows outside the database.
type BackupSink interface {
	AppendTransactions(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) (int, error)
}

type LendingServiceInterface interface {
	CreateRecord(userID uuid.UUID, req *dto.LendingRequest) (*models.LendingRecord, error)
	ListRecords(userID uuid.UUID) ([]models.LendingRecord, error)
	MarkPaid(userID, recordID uuid.UUID) (*models.LendingRecord, error)
	DeleteRecord(userID, recordID uuid.UUID) error
	GetBalance(userID uuid.UUID) (models.LendingBalance, error)
}

type RecurringServiceInterface interface {
	CreatePayment(userID uuid.UUID, req *dto.RecurringPaymentRequest) (*models.RecurringPayment, error)
	ListPayments(userID uuid.UUID) ([]models.RecurringPayment, error)
	ListDue(userID uuid.UUID) ([]models.RecurringPayment, error)
	SetActive(userID, paymentID uuid.UUID, active bool) (*models.RecurringPayment, error)
	DeletePayment(userID, paymentID uuid.UUID) error
}

type RecurringProcessorInterface interface {
	Start(ctx context.Context)
	// RunDue books every due payment; a nil userID covers all users.
	RunDue(ctx context.Context, userID *uuid.UUID) (*dto.RecurringRunResult, error)
	ProcessPayment(ctx context.Context, payment *models.RecurringPayment) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuditLoggerInterface interface {
	LogRecurringRunStarted(ctx context.Context, due int)
	LogRecurringPaymentBooked(ctx context.Context, paymentID, transactionID uuid.UUID, nextDue time.Time)
	LogRecurringPaymentFailed(ctx context.Context, paymentID uuid.UUID, errorMsg string)
	LogRecurringRunCompleted(ctx context.Context, result *dto.RecurringRunResult, durationMs int64)
	LogDuplicateRejected(ctx context.Context, userID uuid.UUID, candidates int)
	LogImportCompleted(ctx context.Context, userID uuid.UUID, result *models.ImportResult)
	LogInsightsGenerated(ctx context.Context, userID uuid.UUID, count int)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}

// DemoDataGeneratorInterface produces fake history for demo accounts.
type DemoDataGeneratorInterface interface {
	GenerateTransactions(userID uuid.UUID, categories []models.Category, start, end time.Time, count int) []models.Transaction
	GenerateSalaryTransactions(userID uuid.UUID, salary *models.Category, start, end time.Time) []models.Transaction
	GenerateAmount(categoryName string) decimal.Decimal
	GenerateTimestamp(start, end time.Time) time.Time
}
