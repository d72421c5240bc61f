package repositories

import (
	"errors"
	"fmt"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("transaction template not found")

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepositoryInterface {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *models.TransactionTemplate) error {
	if err := r.db.Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) GetByID(id uuid.UUID) (*models.TransactionTemplate, error) {
	var template models.TransactionTemplate
	if err := r.db.Preload("Category").Where("id = ?", id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) ListByUser(userID uuid.UUID) ([]models.TransactionTemplate, error) {
	var templates []models.TransactionTemplate
	if err := r.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("usage_count DESC, name ASC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) IncrementUsage(id uuid.UUID) error {
	result := r.db.Model(&models.TransactionTemplate{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment template usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.TransactionTemplate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
