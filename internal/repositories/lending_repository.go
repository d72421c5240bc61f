package repositories

import (
	"errors"
	"fmt"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrLendingRecordNotFound = errors.New("lending record not found")

type lendingRepository struct {
	db *gorm.DB
}

func NewLendingRepository(db *gorm.DB) LendingRepositoryInterface {
	return &lendingRepository{db: db}
}

func (r *lendingRepository) Create(record *models.LendingRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create lending record: %w", err)
	}
	return nil
}

func (r *lendingRepository) GetByID(id uuid.UUID) (*models.LendingRecord, error) {
	var record models.LendingRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLendingRecordNotFound
		}
		return nil, fmt.Errorf("failed to get lending record: %w", err)
	}
	return &record, nil
}

func (r *lendingRepository) ListByUser(userID uuid.UUID) ([]models.LendingRecord, error) {
	var records []models.LendingRecord
	if err := r.db.Where("user_id = ?", userID).
		Order("paid ASC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list lending records: %w", err)
	}
	return records, nil
}

func (r *lendingRepository) Update(record *models.LendingRecord) error {
	result := r.db.Model(record).Select("*").Omit("CreatedAt").Updates(record)
	if result.Error != nil {
		return fmt.Errorf("failed to update lending record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLendingRecordNotFound
	}
	return nil
}

func (r *lendingRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.LendingRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lending record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLendingRecordNotFound
	}
	return nil
}

func (r *lendingRepository) GetBalance(userID uuid.UUID) (models.LendingBalance, error) {
	var rows []struct {
		Paid  bool
		Total decimal.Decimal
	}

	if err := r.db.Model(&models.LendingRecord{}).
		Select("paid, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("paid").
		Scan(&rows).Error; err != nil {
		return models.LendingBalance{}, fmt.Errorf("failed to get lending balance: %w", err)
	}

	balance := models.LendingBalance{Owed: decimal.Zero, Paid: decimal.Zero}
	for _, row := range rows {
		if row.Paid {
			balance.Paid = row.Total.Round(2)
		} else {
			balance.Owed = row.Total.Round(2)
		}
	}
	return balance, nil
}
