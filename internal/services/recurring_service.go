package services

import (
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

// dueListLimit caps one user's due list; the processor pages on its own.
const dueListLimit = 100

var (
	ErrRecurringPaymentNotFound = errors.New("recurring payment not found")
	ErrInvalidRecurringPayment  = errors.New("invalid recurring payment")
)

type recurringService struct {
	recurringRepo   repositories.RecurringPaymentRepositoryInterface
	categoryService CategoryServiceInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewRecurringService(
	recurringRepo repositories.RecurringPaymentRepositoryInterface,
	categoryService CategoryServiceInterface,
	logger *slog.Logger,
) RecurringServiceInterface {
	return &recurringService{
		recurringRepo:   recurringRepo,
		categoryService: categoryService,
		logger:          logger,
		now:             time.Now,
	}
}

// CreatePayment schedules the first booking on the start date.
func (s *recurringService) CreatePayment(userID uuid.UUID, req *dto.RecurringPaymentRequest) (*models.RecurringPayment, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurringPayment, err)
	}

	kind := strings.ToLower(strings.TrimSpace(req.Type))
	if kind == "" {
		kind = models.TransactionTypeExpense
	}
	frequency := strings.ToLower(strings.TrimSpace(req.Frequency))

	if req.CategoryID != nil {
		category, err := s.categoryService.GetCategory(userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != kind {
			return nil, fmt.Errorf("%w: category %q is for %s transactions", ErrCategoryTypeMismatch, category.Name, category.Type)
		}
	}

	start := req.StartDate.UTC()
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	payment := &models.RecurringPayment{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Type:        kind,
		Amount:      amount,
		CategoryID:  req.CategoryID,
		Frequency:   frequency,
		StartDate:   start,
		NextDueDate: start,
		Active:      true,
	}
	if err := payment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurringPayment, err)
	}

	if err := s.recurringRepo.Create(payment); err != nil {
		return nil, fmt.Errorf("failed to create recurring payment: %w", err)
	}

	s.logger.Info("recurring payment created",
		slog.String("user_id", userID.String()),
		slog.String("payment_id", payment.ID.String()),
		slog.String("frequency", payment.Frequency))
	return payment, nil
}

func (s *recurringService) ListPayments(userID uuid.UUID) ([]models.RecurringPayment, error) {
	payments, err := s.recurringRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring payments: %w", err)
	}
	return payments, nil
}

// ListDue returns active payments due today or earlier.
func (s *recurringService) ListDue(userID uuid.UUID) ([]models.RecurringPayment, error) {
	payments, err := s.recurringRepo.ListDue(&userID, s.now().UTC(), dueListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payments: %w", err)
	}
	return payments, nil
}

// SetActive pauses or resumes a payment. Resuming a payment whose due date
// has passed books it on the next processor run.
func (s *recurringService) SetActive(userID, paymentID uuid.UUID, active bool) (*models.RecurringPayment, error) {
	payment, err := s.getOwned(userID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Active == active {
		return payment, nil
	}

	payment.Active = active
	if err := s.recurringRepo.Update(payment); err != nil {
		if errors.Is(err, repositories.ErrRecurringPaymentNotFound) {
			return nil, ErrRecurringPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update recurring payment: %w", err)
	}
	return payment, nil
}

func (s *recurringService) DeletePayment(userID, paymentID uuid.UUID) error {
	if _, err := s.getOwned(userID, paymentID); err != nil {
		return err
	}
	if err := s.recurringRepo.Delete(paymentID); err != nil {
		if errors.Is(err, repositories.ErrRecurringPaymentNotFound) {
			return ErrRecurringPaymentNotFound
		}
		return fmt.Errorf("failed to delete recurring payment: %w", err)
	}
	return nil
}

func (s *recurringService) getOwned(userID, paymentID uuid.UUID) (*models.RecurringPayment, error) {
	payment, err := s.recurringRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecurringPaymentNotFound) {
			return nil, ErrRecurringPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get recurring payment: %w", err)
	}
	if payment.UserID != userID {
		return nil, ErrRecurringPaymentNotFound
	}
	return payment, nil
}
