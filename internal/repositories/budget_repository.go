package repositories

import (
	"errors"
	"fmt"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBudgetNotFound = errors.New("budget not found")

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepositoryInterface {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Upsert(budget *models.Budget) error {
	budget.UpdatedAt = time.Now().UTC()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_limit", "period", "start_date", "end_date", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}

	// On conflict the generated ID is discarded; reload the stored row.
	var stored models.Budget
	if err := r.db.Where("user_id = ? AND category_id = ?", budget.UserID, budget.CategoryID).
		First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload budget: %w", err)
	}
	*budget = stored
	return nil
}

func (r *budgetRepository) GetByID(id uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.Preload("Category").Where("id = ?", id).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &budget, nil
}

func (r *budgetRepository) ListByUser(userID uuid.UUID) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (r *budgetRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Budget{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}
