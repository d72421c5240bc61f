package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DuplicateWindow is how far apart two entries may be and still count
	// as the same transaction.
	DuplicateWindow = 2 * time.Hour
	// duplicatePrefixLength is how much of the new description has to appear
	// in the stored one.
	duplicatePrefixLength = 20
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("possible duplicate transaction")
	ErrInvalidTransaction   = errors.New("invalid transaction")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidCursor        = errors.New("invalid pagination cursor")
)

// DuplicateTransactionError carries the stored rows that look like the new
// entry. It matches ErrDuplicateTransaction with errors.Is.
type DuplicateTransactionError struct {
	Candidates []models.Transaction
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("%s: %d similar transaction(s) within %s", ErrDuplicateTransaction, len(e.Candidates), DuplicateWindow)
}

func (e *DuplicateTransactionError) Is(target error) bool {
	return target == ErrDuplicateTransaction
}

type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryService CategoryServiceInterface
	categorizer     CategorizerInterface
	insightService  InsightServiceInterface
	publisher       TransactionEventPublisher
	auditLogger     AuditLoggerInterface
	logger          *slog.Logger
	now             func() time.Time
}

// NewTransactionService wires the add path. publisher and auditLogger may be
// nil.
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryService CategoryServiceInterface,
	categorizer CategorizerInterface,
	insightService InsightServiceInterface,
	publisher TransactionEventPublisher,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryService: categoryService,
		categorizer:     categorizer,
		insightService:  insightService,
		publisher:       publisher,
		auditLogger:     auditLogger,
		logger:          logger,
		now:             time.Now,
	}
}

// AddTransaction runs the full add path: duplicate check unless forced,
// category resolution, tag merge, insert, event and insight refresh. A
// recurring booking that already exists for its date is returned as is.
func (s *TransactionService) AddTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error) {
	transactionType := strings.ToLower(strings.TrimSpace(req.Type))
	if !models.IsValidTransactionType(transactionType) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrInvalidTransactionType)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		date = req.TransactionDate.UTC()
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrMissingDescription)
	}

	if req.RecurringPaymentID != nil {
		booked, err := s.transactionRepo.GetRecurringOccurrence(*req.RecurringPaymentID, date)
		if err == nil {
			return booked, nil
		}
		if !errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, err
		}
	}

	if !req.Force {
		candidates, err := s.CheckDuplicates(userID, amount, description, date)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			if s.auditLogger != nil {
				s.auditLogger.LogDuplicateRejected(ctx, userID, len(candidates))
			}
			return nil, &DuplicateTransactionError{Candidates: candidates}
		}
	}

	transaction := &models.Transaction{
		UserID:          userID,
		Type:            transactionType,
		Amount:          amount,
		Description:     description,
		TransactionDate: date,
		Notes:           req.Notes,
		Tags:            mergeTags(req.Tags, description, req.Notes),
		Location:        req.Location,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),

		RecurringPaymentID: req.RecurringPaymentID,
	}

	category, err := s.resolveCategory(userID, req.CategoryID, description, transactionType)
	if err != nil {
		return nil, err
	}
	if category != nil {
		transaction.CategoryID = &category.ID
	}

	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	if err := s.transactionRepo.Create(transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	transaction.Category = category

	s.logger.Info("transaction added",
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transaction.ID.String()),
		slog.String("type", transaction.Type),
		slog.String("amount", transaction.Amount.StringFixed(2)))

	s.afterCreate(ctx, transaction)

	return transaction, nil
}

// afterCreate failures never undo the stored transaction.
func (s *TransactionService) afterCreate(ctx context.Context, transaction *models.Transaction) {
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, transaction); err != nil {
			s.logger.Warn("failed to publish transaction event",
				slog.Any("error", err),
				slog.String("transaction_id", transaction.ID.String()))
		}
	}

	if s.insightService != nil {
		if _, err := s.insightService.GenerateInsights(transaction.UserID); err != nil {
			s.logger.Warn("failed to regenerate insights",
				slog.Any("error", err),
				slog.String("user_id", transaction.UserID.String()))
		}
	}
}

// resolveCategory returns nil when the transaction stays uncategorised.
func (s *TransactionService) resolveCategory(userID uuid.UUID, categoryID *uuid.UUID, description, transactionType string) (*models.Category, error) {
	if categoryID != nil && *categoryID != uuid.Nil {
		category, err := s.categoryService.GetCategory(userID, *categoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != transactionType {
			return nil, ErrCategoryTypeMismatch
		}
		return category, nil
	}

	result, err := s.categorizer.Categorize(userID, description, transactionType)
	if err != nil {
		// Auto-categorisation is best effort.
		s.logger.Warn("auto-categorization failed", slog.Any("error", err))
		return nil, nil
	}
	return result.Category, nil
}

func (s *TransactionService) GetTransaction(userID, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if transaction.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *TransactionService) UpdateTransaction(userID, transactionID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.Transaction, error) {
	transaction, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		transaction.Type = strings.ToLower(strings.TrimSpace(*req.Type))
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		transaction.Amount = amount
	}
	if req.Description != nil {
		transaction.Description = strings.TrimSpace(*req.Description)
	}
	if req.TransactionDate != nil {
		transaction.TransactionDate = req.TransactionDate.UTC()
	}
	if req.Notes != nil {
		transaction.Notes = *req.Notes
	}
	if req.Location != nil {
		transaction.Location = *req.Location
	}
	if req.PaymentMethod != nil {
		transaction.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
	}
	if req.Tags != nil {
		transaction.Tags = mergeTags(req.Tags, transaction.Description, transaction.Notes)
	}

	switch {
	case req.ClearCategory:
		transaction.CategoryID = nil
		transaction.Category = nil
	case req.CategoryID != nil:
		category, err := s.categoryService.GetCategory(userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = &category.ID
		transaction.Category = category
	}

	if transaction.Category != nil && transaction.Category.Type != transaction.Type {
		return nil, ErrCategoryTypeMismatch
	}
	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	if err := s.transactionRepo.Update(transaction); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return transaction, nil
}

func (s *TransactionService) DeleteTransaction(userID, transactionID uuid.UUID) error {
	if _, err := s.GetTransaction(userID, transactionID); err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(transactionID); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ListTransactions pages newest first. One extra row is fetched to learn
// whether another page exists.
func (s *TransactionService) ListTransactions(userID uuid.UUID, filters models.TransactionFilters, cursor string, limit int) ([]models.Transaction, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	filters.UserID = userID

	var position *repositories.TransactionCursor
	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		position = decoded
	}

	transactions, err := s.transactionRepo.GetPage(filters, position, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if len(transactions) <= limit {
		return transactions, "", nil
	}

	transactions = transactions[:limit]
	last := transactions[limit-1]
	return transactions, encodeCursor(repositories.TransactionCursor{Date: last.TransactionDate, ID: last.ID}), nil
}

// CheckDuplicates finds stored rows within DuplicateWindow of date whose
// amount is within a cent and whose description contains the first
// characters of this one.
func (s *TransactionService) CheckDuplicates(userID uuid.UUID, amount decimal.Decimal, description string, date time.Time) ([]models.Transaction, error) {
	prefix := duplicatePrefix(description)
	candidates, err := s.transactionRepo.FindPotentialDuplicates(userID, amount, date, DuplicateWindow, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	return candidates, nil
}

func duplicatePrefix(description string) string {
	runes := []rune(strings.ToLower(strings.TrimSpace(description)))
	if len(runes) > duplicatePrefixLength {
		runes = runes[:duplicatePrefixLength]
	}
	return string(runes)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidTransaction, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrInvalidAmount)
	}
	return amount.Round(2), nil
}

type cursorData struct {
	Timestamp     time.Time `json:"timestamp"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

func encodeCursor(c repositories.TransactionCursor) string {
	jsonData, err := json.Marshal(cursorData{Timestamp: c.Date, TransactionID: c.ID})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonData)
}

func decodeCursor(cursor string) (*repositories.TransactionCursor, error) {
	jsonData, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var data cursorData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if data.TransactionID == uuid.Nil || data.Timestamp.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &repositories.TransactionCursor{Date: data.Timestamp, ID: data.TransactionID}, nil
}
