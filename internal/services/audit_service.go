package services

import (
	"errors"
	"fmt"
	"log/slog"

	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

// AuditService writes the user-facing activity trail. Recording never fails
// the calling operation; storage errors are logged.
type AuditService struct {
	repo   repositories.AuditLogRepositoryInterface
	logger *slog.Logger
}

func NewAuditService(repo repositories.AuditLogRepositoryInterface, logger *slog.Logger) AuditServiceInterface {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

var (
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidAuditLog = errors.New("invalid audit log")
)

const maxActivityPageSize = 100

// ValidateActivityType rejects actions outside the known catalogue.
func ValidateActivityType(action string) error {
	validActions := map[string]bool{
		models.AuditActionRegister:        true,
		models.AuditActionLogin:           true,
		models.AuditActionLogout:          true,
		models.AuditActionFailedLogin:     true,
		models.AuditActionAccountLocked:   true,
		models.AuditActionTokenRefresh:    true,
		models.AuditActionPasswordChanged: true,
		models.AuditActionSettingsUpdated: true,
		models.AuditActionBackupExported:  true,
		models.AuditActionBackupRestored:  true,
		models.AuditActionCloudBackup:     true,
		models.AuditActionImport:          true,
	}

	if !validActions[action] {
		return fmt.Errorf("%w: unknown activity type %q", ErrInvalidAuditLog, action)
	}
	return nil
}

func (s *AuditService) Record(userID *uuid.UUID, action, resource, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	if err := ValidateActivityType(action); err != nil {
		s.logger.Warn("dropping audit entry", slog.Any("error", err))
		return
	}

	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   metadata,
	}

	if err := s.repo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			slog.Any("error", err),
			slog.String("action", action),
			slog.String("resource", resource))
	}
}

func (s *AuditService) GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrInvalidUserID
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxActivityPageSize {
		limit = maxActivityPageSize
	}

	logs, total, err := s.repo.GetByUserID(userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get user activity: %w", err)
	}
	return logs, total, nil
}
