package repositories

import (
	"errors"
	"fmt"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRecurringPaymentNotFound = errors.New("recurring payment not found")

type recurringPaymentRepository struct {
	db *gorm.DB
}

func NewRecurringPaymentRepository(db *gorm.DB) RecurringPaymentRepositoryInterface {
	return &recurringPaymentRepository{db: db}
}

func (r *recurringPaymentRepository) Create(payment *models.RecurringPayment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create recurring payment: %w", err)
	}
	return nil
}

func (r *recurringPaymentRepository) GetByID(id uuid.UUID) (*models.RecurringPayment, error) {
	var payment models.RecurringPayment
	if err := r.db.Preload("Category").Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecurringPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get recurring payment: %w", err)
	}
	return &payment, nil
}

func (r *recurringPaymentRepository) ListByUser(userID uuid.UUID) ([]models.RecurringPayment, error) {
	var payments []models.RecurringPayment
	if err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("next_due_date ASC, name ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list recurring payments: %w", err)
	}
	return payments, nil
}

func (r *recurringPaymentRepository) ListDue(userID *uuid.UUID, asOf time.Time, limit int) ([]models.RecurringPayment, error) {
	query := r.db.Preload("Category").
		Where("active = ? AND next_due_date <= ?", true, asOf.UTC())
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var payments []models.RecurringPayment
	if err := query.Order("next_due_date ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list due recurring payments: %w", err)
	}
	return payments, nil
}

func (r *recurringPaymentRepository) Update(payment *models.RecurringPayment) error {
	payment.UpdatedAt = time.Now().UTC()
	result := r.db.Model(payment).Select("*").Omit("Category", "CreatedAt").Updates(payment)
	if result.Error != nil {
		return fmt.Errorf("failed to update recurring payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecurringPaymentNotFound
	}
	return nil
}

func (r *recurringPaymentRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.RecurringPayment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete recurring payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecurringPaymentNotFound
	}
	return nil
}
