package repositories

import (
	"errors"
	"fmt"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGoalNotFound = errors.New("savings goal not found")

type savingsGoalRepository struct {
	db *gorm.DB
}

func NewSavingsGoalRepository(db *gorm.DB) SavingsGoalRepositoryInterface {
	return &savingsGoalRepository{db: db}
}

func (r *savingsGoalRepository) Create(goal *models.SavingsGoal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create savings goal: %w", err)
	}
	return nil
}

func (r *savingsGoalRepository) GetByID(id uuid.UUID) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := r.db.Where("id = ?", id).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	return &goal, nil
}

// ListActive orders high priority first; goals without a target date sort
// after dated ones of the same priority.
func (r *savingsGoalRepository) ListActive(userID uuid.UUID) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order(`CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC`).
		Order("CASE WHEN target_date IS NULL THEN 1 ELSE 0 END ASC").
		Order("target_date ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to list active savings goals: %w", err)
	}
	return goals, nil
}

func (r *savingsGoalRepository) ListByUser(userID uuid.UUID) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to list savings goals: %w", err)
	}
	return goals, nil
}

func (r *savingsGoalRepository) Update(goal *models.SavingsGoal) error {
	goal.UpdatedAt = time.Now().UTC()
	result := r.db.Model(goal).Select("*").Omit("CreatedAt").Updates(goal)
	if result.Error != nil {
		return fmt.Errorf("failed to update savings goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *savingsGoalRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.SavingsGoal{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete savings goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
