package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	if err := r.db.Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	return r.first("failed to get user by ID", "id = ?", id)
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("failed to get user by username", "LOWER(username) = ?", strings.ToLower(username))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("failed to get user by email", "LOWER(email) = ?", strings.ToLower(email))
}

func (r *UserRepository) GetByLogin(identifier string) (*models.User, error) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	return r.first("failed to get user by login", "LOWER(username) = ? OR LOWER(email) = ?", id, id)
}

func (r *UserRepository) first(errMsg string, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &user, nil
}

func (r *UserRepository) Update(user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateFailedLoginAttempts(user *models.User) error {
	result := r.db.Model(&models.User{ID: user.ID}).Updates(map[string]interface{}{
		"failed_login_attempts": user.FailedLoginAttempts,
		"locked_at":             user.LockedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update failed login attempts: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ResetFailedLoginAttempts(userID uuid.UUID) error {
	result := r.db.Model(&models.User{ID: userID}).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_at":             nil,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to reset failed login attempts: %w", result.Error)
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(userID uuid.UUID, passwordHash string) error {
	result := r.db.Model(&models.User{ID: userID}).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSettings(userID uuid.UUID, theme, currencyCode string) error {
	fields := map[string]interface{}{}
	if theme != "" {
		fields["theme"] = theme
	}
	if currencyCode != "" {
		fields["currency_code"] = currencyCode
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.db.Model(&models.User{ID: userID}).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.Model(&models.User{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	return ids, nil
}

// isDuplicateKeyError recognises unique violations from both SQLite and
// Postgres, whose drivers do not share an error type.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505")
}
