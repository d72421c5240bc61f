package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

const backupVersion = 1

var (
	ErrInvalidBackup       = errors.New("invalid backup")
	ErrAccountNotEmpty     = errors.New("account already has transactions")
	ErrCloudBackupDisabled = errors.New("cloud backup is not configured")
)

// BackupStores groups the repositories a snapshot is read from and written
// back to.
type BackupStores struct {
	Categories   repositories.CategoryRepositoryInterface
	Transactions repositories.TransactionRepositoryInterface
	Budgets      repositories.BudgetRepositoryInterface
	Goals        repositories.SavingsGoalRepositoryInterface
	Templates    repositories.TemplateRepositoryInterface
	Lending      repositories.LendingRepositoryInterface
	Recurring    repositories.RecurringPaymentRepositoryInterface
	Backups      repositories.BackupRepositoryInterface
}

type backupService struct {
	stores  BackupStores
	sink    BackupSink
	breaker CircuitBreakerInterface
	logger  *slog.Logger
	now     func() time.Time
}

// NewBackupService returns the backup service. sink may be nil, in which
// case cloud backups are reported as disabled.
func NewBackupService(stores BackupStores, sink BackupSink, breaker CircuitBreakerInterface, logger *slog.Logger) BackupServiceInterface {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCircuitBreakerConfig("cloud_backup"))
	}
	return &backupService{
		stores:  stores,
		sink:    sink,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *backupService) CreateBackup(userID uuid.UUID) (*models.Backup, error) {
	categories, err := s.stores.Categories.ListByUser(userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	transactions, _, err := s.stores.Transactions.GetWithFilters(models.TransactionFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	budgets, err := s.stores.Budgets.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	goals, err := s.stores.Goals.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	templates, err := s.stores.Templates.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	lending, err := s.stores.Lending.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lending records: %w", err)
	}
	recurring, err := s.stores.Recurring.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring payments: %w", err)
	}

	// Preloaded categories are already in Categories.
	for i := range transactions {
		transactions[i].Category = nil
	}
	for i := range budgets {
		budgets[i].Category = nil
	}
	for i := range templates {
		templates[i].Category = nil
	}
	for i := range recurring {
		recurring[i].Category = nil
	}

	return &models.Backup{
		Version:           backupVersion,
		ExportedAt:        s.now().UTC(),
		Transactions:      transactions,
		Categories:        categories,
		Budgets:           budgets,
		Goals:             goals,
		Templates:         templates,
		LendingRecords:    lending,
		RecurringPayments: recurring,
	}, nil
}

// RestoreBackup loads a snapshot into an account without transactions.
// Every record gets a fresh id; categories that already exist by name and
// type are reused and references are rewritten to match.
func (s *backupService) RestoreBackup(userID uuid.UUID, backup *models.Backup) (*dto.RestoreResult, error) {
	if backup == nil || backup.Version != backupVersion {
		return nil, fmt.Errorf("%w: unsupported version", ErrInvalidBackup)
	}

	count, err := s.stores.Transactions.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	if count > 0 {
		return nil, ErrAccountNotEmpty
	}

	existing, err := s.stores.Categories.ListByUser(userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	byKey := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		byKey[categoryKey(c.Name, c.Type)] = c.ID
	}

	restored := &models.Backup{Version: backup.Version, ExportedAt: backup.ExportedAt}
	idMap := make(map[uuid.UUID]uuid.UUID, len(backup.Categories))
	for _, c := range backup.Categories {
		key := categoryKey(c.Name, c.Type)
		if id, ok := byKey[key]; ok {
			idMap[c.ID] = id
			continue
		}
		oldID := c.ID
		c.ID = uuid.New()
		c.UserID = userID
		idMap[oldID] = c.ID
		byKey[key] = c.ID
		restored.Categories = append(restored.Categories, c)
	}
	remap := func(id *uuid.UUID) *uuid.UUID {
		if id == nil {
			return nil
		}
		if mapped, ok := idMap[*id]; ok {
			return &mapped
		}
		return nil
	}

	paymentIDs := make(map[uuid.UUID]uuid.UUID, len(backup.RecurringPayments))
	for _, r := range backup.RecurringPayments {
		oldID := r.ID
		r.ID, r.UserID, r.Category = uuid.New(), userID, nil
		r.CategoryID = remap(r.CategoryID)
		paymentIDs[oldID] = r.ID
		restored.RecurringPayments = append(restored.RecurringPayments, r)
	}

	for _, t := range backup.Transactions {
		t.ID, t.UserID, t.Category = uuid.New(), userID, nil
		t.CategoryID = remap(t.CategoryID)
		if t.RecurringPaymentID != nil {
			if id, ok := paymentIDs[*t.RecurringPaymentID]; ok {
				t.RecurringPaymentID = &id
			} else {
				t.RecurringPaymentID = nil
			}
		}
		restored.Transactions = append(restored.Transactions, t)
	}
	for _, b := range backup.Budgets {
		categoryID := remap(&b.CategoryID)
		if categoryID == nil {
			s.logger.Warn("skipping budget with unknown category", slog.String("category_id", b.CategoryID.String()))
			continue
		}
		b.ID, b.UserID, b.Category, b.CategoryID = uuid.New(), userID, nil, *categoryID
		restored.Budgets = append(restored.Budgets, b)
	}
	for _, g := range backup.Goals {
		g.ID, g.UserID = uuid.New(), userID
		restored.Goals = append(restored.Goals, g)
	}
	for _, t := range backup.Templates {
		t.ID, t.UserID, t.Category = uuid.New(), userID, nil
		t.CategoryID = remap(t.CategoryID)
		restored.Templates = append(restored.Templates, t)
	}
	for _, l := range backup.LendingRecords {
		l.ID, l.UserID = uuid.New(), userID
		restored.LendingRecords = append(restored.LendingRecords, l)
	}
	if err := s.stores.Backups.Restore(restored); err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}

	result := &dto.RestoreResult{
		Transactions:      len(restored.Transactions),
		Categories:        len(restored.Categories),
		Budgets:           len(restored.Budgets),
		Goals:             len(restored.Goals),
		Templates:         len(restored.Templates),
		LendingRecords:    len(restored.LendingRecords),
		RecurringPayments: len(restored.RecurringPayments),
	}
	s.logger.Info("backup restored",
		slog.String("user_id", userID.String()),
		slog.Int("transactions", result.Transactions),
		slog.Int("categories", result.Categories))
	return result, nil
}

func categoryKey(name, categoryType string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + categoryType
}

// BackupToCloud appends the user's transactions to the configured sink and
// returns the number of rows written.
func (s *backupService) BackupToCloud(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.sink == nil {
		return 0, ErrCloudBackupDisabled
	}
	if s.breaker.IsOpen() {
		return 0, ErrCircuitBreakerOpen
	}

	transactions, _, err := s.stores.Transactions.GetWithFilters(models.TransactionFilters{UserID: userID})
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	rows, err := s.sink.AppendTransactions(ctx, userID, transactions)
	if err != nil {
		s.breaker.RecordFailure()
		s.logger.Error("cloud backup failed",
			slog.Any("error", err),
			slog.String("user_id", userID.String()),
			slog.String("breaker_state", s.breaker.GetState().String()))
		return 0, fmt.Errorf("cloud backup failed: %w", err)
	}
	s.breaker.RecordSuccess()

	s.logger.Info("cloud backup completed",
		slog.String("user_id", userID.String()),
		slog.Int("rows", rows))
	return rows, nil
}
