package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// duplicateAmountTolerance is the maximum amount difference for two
// transactions to count as the same payment.
var duplicateAmountTolerance = decimal.NewFromFloat(0.01)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) CreateBatch(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(transactions, 100).Error; err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Preload("Category").Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// GetRecurringOccurrence finds the booking a recurring payment made for date.
func (r *transactionRepository) GetRecurringOccurrence(recurringPaymentID uuid.UUID, date time.Time) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.Where("recurring_payment_id = ? AND transaction_date = ?", recurringPaymentID, date.UTC()).First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up recurring booking: %w", err)
	}
	return &transaction, nil
}

func (r *transactionRepository) Update(transaction *models.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	transaction.TransactionDate = transaction.TransactionDate.UTC()
	transaction.Tags = transaction.Tags.Normalize()

	result := r.db.Model(transaction).Select("*").Omit("Category", "CreatedAt").Updates(transaction)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// applyFilters narrows a query to the filter fields that are set.
func (r *transactionRepository) applyFilters(query *gorm.DB, filters models.TransactionFilters) *gorm.DB {
	query = query.Where("user_id = ?", filters.UserID)

	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", filters.StartDate.UTC())
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", filters.EndDate.UTC())
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.MinAmount != nil {
		query = query.Where("amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("amount <= ?", *filters.MaxAmount)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`(LOWER(description) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	if tag := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(filters.Tag), "#")); tag != "" {
		// Tags are stored as a JSON array, so match the quoted element.
		query = query.Where(`tags LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}
	return query
}

func (r *transactionRepository) GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	if err := r.applyFilters(r.db.Model(&models.Transaction{}), filters).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := r.applyFilters(r.db.Preload("Category"), filters).
		Order("transaction_date DESC, id DESC").
		Offset(filters.Offset)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *transactionRepository) GetPage(filters models.TransactionFilters, cursor *TransactionCursor, limit int) ([]models.Transaction, error) {
	query := r.applyFilters(r.db.Preload("Category"), filters)
	if cursor != nil {
		query = query.Where(
			"(transaction_date < ? OR (transaction_date = ? AND id < ?))",
			cursor.Date.UTC(), cursor.Date.UTC(), cursor.ID,
		)
	}

	var transactions []models.Transaction
	if err := query.Order("transaction_date DESC, id DESC").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transaction page: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) GetRecent(userID uuid.UUID, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("transaction_date DESC, created_at DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}
	return transactions, nil
}

// GetByDateRange returns transactions in [start, end). An empty type
// matches both income and expense.
func (r *transactionRepository) GetByDateRange(userID uuid.UUID, transactionType string, start, end time.Time) ([]models.Transaction, error) {
	query := r.db.Preload("Category").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?", userID, start.UTC(), end.UTC())
	if transactionType != "" {
		query = query.Where("type = ?", transactionType)
	}

	var transactions []models.Transaction
	if err := query.Order("transaction_date ASC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by date range: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) FindPotentialDuplicates(userID uuid.UUID, amount decimal.Decimal, date time.Time, window time.Duration, descriptionPrefix string) ([]models.Transaction, error) {
	date = date.UTC()
	pattern := "%" + escapeLike(strings.ToLower(descriptionPrefix)) + "%"

	var transactions []models.Transaction
	if err := r.db.
		Where("user_id = ?", userID).
		Where("amount > ? AND amount < ?", amount.Sub(duplicateAmountTolerance), amount.Add(duplicateAmountTolerance)).
		Where("transaction_date >= ? AND transaction_date <= ?", date.Add(-window), date.Add(window)).
		Where(`LOWER(description) LIKE ? ESCAPE '\'`, pattern).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find duplicate transactions: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) GetTotalsByType(userID uuid.UUID, start, end time.Time) (models.TypeTotals, error) {
	var rows []struct {
		Type  string
		Total decimal.Decimal
	}

	if err := r.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?", userID, start.UTC(), end.UTC()).
		Group("type").
		Scan(&rows).Error; err != nil {
		return models.TypeTotals{}, fmt.Errorf("failed to get totals by type: %w", err)
	}

	totals := models.TypeTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case models.TransactionTypeIncome:
			totals.Income = row.Total.Round(2)
		case models.TransactionTypeExpense:
			totals.Expense = row.Total.Round(2)
		}
	}
	return totals, nil
}

// GetCategorySummary groups a period's transactions of one type by
// category, largest total first.
func (r *transactionRepository) GetCategorySummary(userID uuid.UUID, transactionType string, start, end time.Time) ([]models.CategorySummary, error) {
	var summaries []models.CategorySummary

	if err := r.db.Table("transactions AS t").
		Select(`t.category_id AS category_id,
			COALESCE(c.name, '') AS category_name,
			COUNT(*) AS transaction_count,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COALESCE(AVG(t.amount), 0) AS average_amount`).
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.type = ? AND t.transaction_date >= ? AND t.transaction_date < ?",
			userID, transactionType, start.UTC(), end.UTC()).
		Group("t.category_id, c.name").
		Order("total_amount DESC").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to get category summary: %w", err)
	}

	for i := range summaries {
		summaries[i].TotalAmount = summaries[i].TotalAmount.Round(2)
		summaries[i].AverageAmount = summaries[i].AverageAmount.Round(2)
	}
	return summaries, nil
}

func (r *transactionRepository) SumByCategory(userID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND transaction_date >= ? AND transaction_date < ?",
			userID, categoryID, start.UTC(), end.UTC()).
		Scan(&total).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions by category: %w", err)
	}
	return total.Round(2), nil
}

func (r *transactionRepository) GetPaymentMethodCounts(userID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		PaymentMethod string
		Count         int64
	}

	if err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(payment_method, '') AS payment_method, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("payment_method").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count payment methods: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		method := row.PaymentMethod
		if method == "" {
			method = models.PaymentMethodUnknown
		}
		counts[method] += row.Count
	}
	return counts, nil
}

func (r *transactionRepository) ListTags(userID uuid.UUID) ([]models.StringList, error) {
	var tags []models.StringList
	if err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND tags IS NOT NULL AND tags <> '' AND tags <> '[]'", userID).
		Pluck("tags", &tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *transactionRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
