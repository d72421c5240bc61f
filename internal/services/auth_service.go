package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("user with this username or email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService registers users and manages their token pairs.
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	auditRepo            repositories.AuditLogRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	categoryService      CategoryServiceInterface
	lockoutDuration      time.Duration
	logger               *slog.Logger
	now                  func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	categoryService CategoryServiceInterface,
	lockoutDuration time.Duration,
	logger *slog.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:             userRepo,
		refreshTokenRepo:     refreshTokenRepo,
		auditRepo:            auditRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		categoryService:      categoryService,
		lockoutDuration:      lockoutDuration,
		logger:               logger,
		now:                  time.Now,
	}
}

// client identifies the caller of an auth operation for the audit trail.
type client struct {
	ip        string
	userAgent string
}

// Register creates the user and seeds their default categories. A failure
// to seed is logged and audited but does not undo the registration.
func (s *AuthService) Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error) {
	from := client{ipAddress, userAgent}

	if err := s.ensureAvailable(req.Username, req.Email); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			s.record(from, nil, models.AuditActionRegister, "user", "",
				map[string]interface{}{"username": req.Username, "reason": "user_already_exists"})
		}
		return nil, err
	}

	hash, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.categoryService.CreateDefaultCategories(user.ID); err != nil {
		s.logger.Error("default categories not seeded",
			slog.Any("error", err),
			slog.String("user_id", user.ID.String()))
		s.record(from, &user.ID, models.AuditActionRegister, "category", "",
			map[string]interface{}{"reason": "default_categories_failed"})
	}

	s.record(from, &user.ID, models.AuditActionRegister, "user", user.ID.String(), nil)
	return user, nil
}

func (s *AuthService) ensureAvailable(username, email string) error {
	lookups := []func() (*models.User, error){
		func() (*models.User, error) { return s.userRepo.GetByUsername(username) },
		func() (*models.User, error) { return s.userRepo.GetByEmail(email) },
	}
	for _, lookup := range lookups {
		_, err := lookup()
		switch {
		case err == nil:
			return ErrUserAlreadyExists
		case !errors.Is(err, repositories.ErrUserNotFound):
			return fmt.Errorf("failed to check existing user: %w", err)
		}
	}
	return nil
}

// Login accepts either the username or the email as the identifier. The
// third consecutive wrong password locks the account for lockoutDuration;
// once that has passed the counter starts over.
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	from := client{ipAddress, userAgent}
	failed := func(reason string) {
		s.record(from, nil, models.AuditActionFailedLogin, "user", "",
			map[string]interface{}{"login": req.Login, "reason": reason})
	}

	user, err := s.userRepo.GetByLogin(req.Login)
	if errors.Is(err, repositories.ErrUserNotFound) {
		failed("user_not_found")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLockedAt(s.now(), s.lockoutDuration) {
		failed("account_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		if user.IsLocked() {
			user.Unlock()
		}
		user.IncrementFailedAttempts()
		if err := s.userRepo.UpdateFailedLoginAttempts(user); err != nil {
			s.logger.Error("failed login not counted",
				slog.Any("error", err),
				slog.String("user_id", user.ID.String()))
		}
		if user.IsLocked() {
			s.record(from, &user.ID, models.AuditActionAccountLocked, "user", user.ID.String(), nil)
		}
		failed("invalid_password")
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.IsLocked() {
		if err := s.userRepo.ResetFailedLoginAttempts(user.ID); err != nil {
			s.logger.Warn("failed login counter not reset",
				slog.Any("error", err),
				slog.String("user_id", user.ID.String()))
		}
		user.Unlock()
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.record(from, &user.ID, models.AuditActionLogin, "user", user.ID.String(), nil)
	return tokens, nil
}

// RefreshTokens rotates the pair: the presented refresh token is revoked
// and a new one is issued.
func (s *AuthService) RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	from := client{ipAddress, userAgent}
	rejected := func(userID *uuid.UUID, reason string) (*dto.TokenResponse, error) {
		s.record(from, userID, models.AuditActionTokenRefresh, "token", "",
			map[string]interface{}{"reason": reason})
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return rejected(nil, "invalid_token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		return rejected(&userID, "token_not_found")
	}
	if !stored.IsValid() {
		return rejected(&userID, "token_expired_or_revoked")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.refreshTokenRepo.Revoke(stored.ID); err != nil {
		s.logger.Warn("rotated refresh token not revoked",
			slog.Any("error", err),
			slog.String("user_id", user.ID.String()),
			slog.String("token_id", stored.ID.String()))
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.record(from, &user.ID, models.AuditActionTokenRefresh, "user", user.ID.String(), nil)
	return tokens, nil
}

// Logout blacklists the access token and revokes every refresh token of the
// user. An invalid token is still blacklisted by jti when one can be read.
// Logout itself never fails.
func (s *AuthService) Logout(accessToken, ipAddress, userAgent string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		if jti, _ := s.tokenService.GetJTI(accessToken); jti != "" {
			s.blacklist(jti, uuid.Nil, time.Now().Add(24*time.Hour))
		}
		return nil
	}

	userID, _ := uuid.Parse(claims.UserID)
	expiry, _ := s.tokenService.GetTokenExpiry(accessToken)
	s.blacklist(claims.ID, userID, expiry)

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		s.logger.Warn("refresh tokens not revoked on logout",
			slog.Any("error", err),
			slog.String("user_id", userID.String()))
	}

	s.record(client{ipAddress, userAgent}, &userID, models.AuditActionLogout, "user", userID.String(), nil)
	return nil
}

// CleanupExpiredTokens purges expired refresh tokens and blacklist entries
// and returns how many rows went.
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	refresh, err := s.refreshTokenRepo.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	blacklisted, err := s.blacklistedTokenRepo.DeleteExpired()
	if err != nil {
		return refresh, fmt.Errorf("failed to delete expired blacklist entries: %w", err)
	}

	return refresh + blacklisted, nil
}

func (s *AuthService) issueTokens(user *models.User) (*dto.TokenResponse, error) {
	access, accessExpiry, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, refreshExpiry, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: refreshExpiry,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *AuthService) blacklist(jti string, userID uuid.UUID, expiresAt time.Time) {
	err := s.blacklistedTokenRepo.Create(&models.BlacklistedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt})
	if err != nil {
		s.logger.Error("access token not blacklisted",
			slog.Any("error", err),
			slog.String("jti", jti))
	}
}

// hashToken is the lookup key for a stored refresh token; raw tokens are
// never persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// record writes an audit entry. Audit failures are logged, never returned.
func (s *AuthService) record(from client, userID *uuid.UUID, action, resource, resourceID string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  from.ip,
		UserAgent:  from.userAgent,
		Metadata:   metadata,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		s.logger.Error("audit log not written",
			slog.Any("error", err),
			slog.String("action", action),
			slog.String("resource", resource))
	}
}
