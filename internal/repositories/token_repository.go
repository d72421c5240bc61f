package repositories

import (
	"errors"
	"fmt"
	"time"

	"walletwhiz/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// deleteExpired removes rows of model whose expires_at has passed.
func deleteExpired(db *gorm.DB, model interface{}, what string) (int64, error) {
	result := db.Where("expires_at < ?", time.Now().UTC()).Delete(model)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired %s: %w", what, result.Error)
	}
	return result.RowsAffected, nil
}

// RefreshTokenRepository stores hashed refresh tokens. Revocation stamps
// revoked_at; rows are removed only once expired.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepositoryInterface {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(token *models.RefreshToken) error {
	if token == nil {
		return errors.New("refresh token cannot be nil")
	}
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByTokenHash(tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return &token, nil
}

func (r *RefreshTokenRepository) active() *gorm.DB {
	return r.db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL")
}

// Revoke returns ErrRefreshTokenNotFound when the token is unknown or was
// already revoked.
func (r *RefreshTokenRepository) Revoke(tokenID uuid.UUID) error {
	result := r.active().Where("id = ?", tokenID).Update("revoked_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(userID uuid.UUID) error {
	if err := r.active().Where("user_id = ?", userID).Update("revoked_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired() (int64, error) {
	return deleteExpired(r.db, &models.RefreshToken{}, "refresh tokens")
}

// blacklistedTokenRepository holds the JTIs of logged-out access tokens
// until they would have expired anyway.
type blacklistedTokenRepository struct {
	db *gorm.DB
}

func NewBlacklistedTokenRepository(db *gorm.DB) BlacklistedTokenRepositoryInterface {
	return &blacklistedTokenRepository{db: db}
}

// Create ignores a JTI that is already listed, so a repeated logout succeeds.
func (r *blacklistedTokenRepository) Create(token *models.BlacklistedToken) error {
	if token == nil {
		return errors.New("blacklisted token cannot be nil")
	}
	err := r.db.Create(token).Error
	if err != nil && !isDuplicateKeyError(err) {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *blacklistedTokenRepository) IsBlacklisted(jti string) (bool, error) {
	var found int64
	err := r.db.Model(&models.BlacklistedToken{}).Where("jti = ?", jti).Limit(1).Count(&found).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return found > 0, nil
}

func (r *blacklistedTokenRepository) DeleteExpired() (int64, error) {
	return deleteExpired(r.db, &models.BlacklistedToken{}, "blacklisted tokens")
}
