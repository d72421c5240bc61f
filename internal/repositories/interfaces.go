package repositories

import (
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByLogin matches either the username or the email address.
	GetByLogin(identifier string) (*models.User, error)
	Update(user *models.User) error
	UpdateFailedLoginAttempts(user *models.User) error
	ResetFailedLoginAttempts(userID uuid.UUID) error
	UpdatePasswordHash(userID uuid.UUID, passwordHash string) error
	UpdateSettings(userID uuid.UUID, theme, currencyCode string) error
	ListIDs() ([]uuid.UUID, error)
}

type CurrencyRepositoryInterface interface {
	List() ([]models.Currency, error)
	GetByCode(code string) (*models.Currency, error)
}

type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Revoke(tokenID uuid.UUID) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() (int64, error)
}

type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	IsBlacklisted(jti string) (bool, error)
	DeleteExpired() (int64, error)
}

type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
}

type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	CreateBatch(categories []models.Category) error
	GetByID(id uuid.UUID) (*models.Category, error)
	GetByName(userID uuid.UUID, name, categoryType string) (*models.Category, error)
	// ListByUser returns every category when categoryType is empty.
	ListByUser(userID uuid.UUID, categoryType string) ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uuid.UUID) error
	CountTransactions(categoryID uuid.UUID) (int64, error)
}

// TransactionCursor is the keyset position for date-descending pagination.
type TransactionCursor struct {
	Date time.Time
	ID   uuid.UUID
}

type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	CreateBatch(transactions []models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetRecurringOccurrence(recurringPaymentID uuid.UUID, date time.Time) (*models.Transaction, error)
	Update(transaction *models.Transaction) error
	Delete(id uuid.UUID) error
	GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	GetPage(filters models.TransactionFilters, cursor *TransactionCursor, limit int) ([]models.Transaction, error)
	GetRecent(userID uuid.UUID, limit int) ([]models.Transaction, error)
	GetByDateRange(userID uuid.UUID, transactionType string, start, end time.Time) ([]models.Transaction, error)
	FindPotentialDuplicates(userID uuid.UUID, amount decimal.Decimal, date time.Time, window time.Duration, descriptionPrefix string) ([]models.Transaction, error)
	GetTotalsByType(userID uuid.UUID, start, end time.Time) (models.TypeTotals, error)
	GetCategorySummary(userID uuid.UUID, transactionType string, start, end time.Time) ([]models.CategorySummary, error)
	SumByCategory(userID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	GetPaymentMethodCounts(userID uuid.UUID) (map[string]int64, error)
	ListTags(userID uuid.UUID) ([]models.StringList, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

type BudgetRepositoryInterface interface {
	// Upsert replaces the budget for the same user and category if present.
	Upsert(budget *models.Budget) error
	GetByID(id uuid.UUID) (*models.Budget, error)
	ListByUser(userID uuid.UUID) ([]models.Budget, error)
	Delete(id uuid.UUID) error
}

type SavingsGoalRepositoryInterface interface {
	Create(goal *models.SavingsGoal) error
	GetByID(id uuid.UUID) (*models.SavingsGoal, error)
	// ListActive orders by priority (high first), then nearest target date.
	ListActive(userID uuid.UUID) ([]models.SavingsGoal, error)
	ListByUser(userID uuid.UUID) ([]models.SavingsGoal, error)
	Update(goal *models.SavingsGoal) error
	Delete(id uuid.UUID) error
}

type TemplateRepositoryInterface interface {
	Create(template *models.TransactionTemplate) error
	GetByID(id uuid.UUID) (*models.TransactionTemplate, error)
	ListByUser(userID uuid.UUID) ([]models.TransactionTemplate, error)
	IncrementUsage(id uuid.UUID) error
	Delete(id uuid.UUID) error
}

type InsightRepositoryInterface interface {
	// ReplaceGenerated drops the user's unread insights and stores the new set.
	ReplaceGenerated(userID uuid.UUID, insights []models.FinancialInsight) error
	ListActive(userID uuid.UUID, now time.Time, limit int) ([]models.FinancialInsight, error)
	MarkRead(userID, id uuid.UUID) error
	DeleteExpired(now time.Time) (int64, error)
}

type RecurringPaymentRepositoryInterface interface {
	Create(payment *models.RecurringPayment) error
	GetByID(id uuid.UUID) (*models.RecurringPayment, error)
	ListByUser(userID uuid.UUID) ([]models.RecurringPayment, error)
	// ListDue returns active payments due on or before asOf. A nil userID
	// means all users.
	ListDue(userID *uuid.UUID, asOf time.Time, limit int) ([]models.RecurringPayment, error)
	Update(payment *models.RecurringPayment) error
	Delete(id uuid.UUID) error
}

type LendingRepositoryInterface interface {
	Create(record *models.LendingRecord) error
	GetByID(id uuid.UUID) (*models.LendingRecord, error)
	ListByUser(userID uuid.UUID) ([]models.LendingRecord, error)
	Update(record *models.LendingRecord) error
	Delete(id uuid.UUID) error
	GetBalance(userID uuid.UUID) (models.LendingBalance, error)
}

// BackupRepositoryInterface writes a whole restored snapshot at once.
type BackupRepositoryInterface interface {
	// Restore inserts every record of the backup in one database
	// transaction. IDs and user ids must already be set.
	Restore(backup *models.Backup) error
}
