package repositories

import (
	"errors"
	"fmt"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAuditPageSize = 100

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(entry *models.AuditLog) error {
	if entry == nil {
		return errors.New("audit log cannot be nil")
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// GetByUserID pages through a user's activity, newest first, and returns the
// total row count alongside. limit is clamped to 1..100.
func (r *AuditLogRepository) GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	limit = min(max(limit, 1), maxAuditPageSize)
	offset = max(offset, 0)

	byUser := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.AuditLog{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := r.db.Scopes(byUser).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	if total == 0 {
		return []*models.AuditLog{}, 0, nil
	}

	var entries []*models.AuditLog
	if err := r.db.Scopes(byUser).Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, total, nil
}
