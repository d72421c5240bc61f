package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrLendingRecordNotFound = errors.New("lending record not found")
	ErrInvalidLendingRecord  = errors.New("invalid lending record")
)

type lendingService struct {
	lendingRepo repositories.LendingRepositoryInterface
	logger      *slog.Logger
}

func NewLendingService(lendingRepo repositories.LendingRepositoryInterface, logger *slog.Logger) LendingServiceInterface {
	return &lendingService{lendingRepo: lendingRepo, logger: logger}
}

func (s *lendingService) CreateRecord(userID uuid.UUID, req *dto.LendingRequest) (*models.LendingRecord, error) {
	person := strings.TrimSpace(req.Person)
	if person == "" {
		return nil, fmt.Errorf("%w: person is required", ErrInvalidLendingRecord)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLendingRecord, err)
	}

	record := &models.LendingRecord{
		UserID: userID,
		Person: person,
		Amount: amount,
		Reason: strings.TrimSpace(req.Reason),
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		record.DueDate = &due
	}

	if err := s.lendingRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create lending record: %w", err)
	}
	return record, nil
}

func (s *lendingService) ListRecords(userID uuid.UUID) ([]models.LendingRecord, error) {
	records, err := s.lendingRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lending records: %w", err)
	}
	return records, nil
}

// MarkPaid is idempotent; an already paid record keeps its PaidAt.
func (s *lendingService) MarkPaid(userID, recordID uuid.UUID) (*models.LendingRecord, error) {
	record, err := s.getOwned(userID, recordID)
	if err != nil {
		return nil, err
	}
	if record.Paid {
		return record, nil
	}

	record.MarkPaid()
	if err := s.lendingRepo.Update(record); err != nil {
		if errors.Is(err, repositories.ErrLendingRecordNotFound) {
			return nil, ErrLendingRecordNotFound
		}
		return nil, fmt.Errorf("failed to update lending record: %w", err)
	}

	s.logger.Info("lending record paid",
		slog.String("user_id", userID.String()),
		slog.String("record_id", recordID.String()))
	return record, nil
}

func (s *lendingService) DeleteRecord(userID, recordID uuid.UUID) error {
	if _, err := s.getOwned(userID, recordID); err != nil {
		return err
	}
	if err := s.lendingRepo.Delete(recordID); err != nil {
		if errors.Is(err, repositories.ErrLendingRecordNotFound) {
			return ErrLendingRecordNotFound
		}
		return fmt.Errorf("failed to delete lending record: %w", err)
	}
	return nil
}

func (s *lendingService) GetBalance(userID uuid.UUID) (models.LendingBalance, error) {
	balance, err := s.lendingRepo.GetBalance(userID)
	if err != nil {
		return models.LendingBalance{}, fmt.Errorf("failed to get lending balance: %w", err)
	}
	return balance, nil
}

func (s *lendingService) getOwned(userID, recordID uuid.UUID) (*models.LendingRecord, error) {
	record, err := s.lendingRepo.GetByID(recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrLendingRecordNotFound) {
			return nil, ErrLendingRecordNotFound
		}
		return nil, fmt.Errorf("failed to get lending record: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrLendingRecordNotFound
	}
	return record, nil
}
