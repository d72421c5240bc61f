package repositories

import (
	"errors"
	"fmt"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInsightNotFound = errors.New("insight not found")

type insightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) InsightRepositoryInterface {
	return &insightRepository{db: db}
}

func (r *insightRepository) ReplaceGenerated(userID uuid.UUID, insights []models.FinancialInsight) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND is_read = ?", userID, false).
			Delete(&models.FinancialInsight{}).Error; err != nil {
			return fmt.Errorf("failed to clear insights: %w", err)
		}
		if len(insights) == 0 {
			return nil
		}
		for i := range insights {
			insights[i].UserID = userID
		}
		if err := tx.Create(&insights).Error; err != nil {
			return fmt.Errorf("failed to store insights: %w", err)
		}
		return nil
	})
}

func (r *insightRepository) ListActive(userID uuid.UUID, now time.Time, limit int) ([]models.FinancialInsight, error) {
	var insights []models.FinancialInsight
	if err := r.db.
		Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, now.UTC()).
		Order("priority_rank DESC, created_at DESC").
		Limit(limit).
		Find(&insights).Error; err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	return insights, nil
}

func (r *insightRepository) MarkRead(userID, id uuid.UUID) error {
	result := r.db.Model(&models.FinancialInsight{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark insight read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsightNotFound
	}
	return nil
}

func (r *insightRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC()).Delete(&models.FinancialInsight{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired insights: %w", result.Error)
	}
	return result.RowsAffected, nil
}
