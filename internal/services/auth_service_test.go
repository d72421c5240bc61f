package services

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"
	"walletwhiz/internal/repositories/repository_mocks"
	"walletwhiz/internal/services/service_mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl                 *gomock.Controller
	userRepo             *repository_mocks.MockUserRepositoryInterface
	refreshTokenRepo     *repository_mocks.MockRefreshTokenRepositoryInterface
	auditRepo            *repository_mocks.MockAuditLogRepositoryInterface
	blacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	passwordService      *service_mocks.MockPasswordServiceInterface
	tokenService         *service_mocks.MockTokenServiceInterface
	categoryService      *service_mocks.MockCategoryServiceInterface
	authService          AuthServiceInterface
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.refreshTokenRepo = repository_mocks.NewMockRefreshTokenRepositoryInterface(s.ctrl)
	s.auditRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.blacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.categoryService = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.authService = NewAuthService(s.userRepo, s.refreshTokenRepo, s.auditRepo, s.blacklistedTokenRepo,
		s.passwordService, s.tokenService, s.categoryService, 15*time.Minute, slog.Default())
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  "asha",
		Email:     "asha@example.com",
		Password:  "SecurePass123!",
		FirstName: "Asha",
		LastName:  "Rao",
	}
}

func (s *AuthServiceTestSuite) expectTokens(user *models.User) {
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access_token", time.Now().Add(15*time.Minute), nil)
	s.tokenService.EXPECT().GenerateRefreshToken(user.ID).Return("refresh_token", time.Now().Add(7*24*time.Hour), nil)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(rt *models.RefreshToken) error {
		s.Equal(hashToken("refresh_token"), rt.TokenHash)
		s.Equal(user.ID, rt.UserID)
		return nil
	})
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	req := s.registerRequest()
	userID := uuid.New()

	s.userRepo.EXPECT().GetByUsername("asha").Return(nil, repositories.ErrUserNotFound)
	s.userRepo.EXPECT().GetByEmail("asha@example.com").Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(u *models.User) error {
		u.ID = userID
		return nil
	})
	s.categoryService.EXPECT().CreateDefaultCategories(userID).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Equal(models.AuditActionRegister, log.Action)
		s.Equal("10.0.0.1", log.IPAddress)
		return nil
	})

	user, err := s.authService.Register(req, "10.0.0.1", "curl/8")
	s.NoError(err)
	s.Equal("asha", user.Username)
	s.Equal("asha@example.com", user.Email)
	s.Equal("hashed_password", user.PasswordHash)
}

func (s *AuthServiceTestSuite) TestRegister_UsernameTaken() {
	s.userRepo.EXPECT().GetByUsername("asha").Return(&models.User{Username: "asha"}, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	user, err := s.authService.Register(s.registerRequest(), "10.0.0.1", "curl/8")
	s.ErrorIs(err, ErrUserAlreadyExists)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestRegister_EmailTaken() {
	s.userRepo.EXPECT().GetByUsername("asha").Return(nil, repositories.ErrUserNotFound)
	s.userRepo.EXPECT().GetByEmail("asha@example.com").Return(&models.User{Email: "asha@example.com"}, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Register(s.registerRequest(), "10.0.0.1", "curl/8")
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegister_LookupFails() {
	s.userRepo.EXPECT().GetByUsername("asha").Return(nil, errors.New("connection reset"))

	_, err := s.authService.Register(s.registerRequest(), "10.0.0.1", "curl/8")
	s.Error(err)
	s.NotErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegister_WeakPassword() {
	req := s.registerRequest()
	s.userRepo.EXPECT().GetByUsername(gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.userRepo.EXPECT().GetByEmail(gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("", ErrPasswordTooShort)

	user, err := s.authService.Register(req, "10.0.0.1", "curl/8")
	s.ErrorIs(err, ErrPasswordTooShort)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestRegister_DefaultCategoriesFailureIsNotFatal() {
	s.userRepo.EXPECT().GetByUsername(gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.userRepo.EXPECT().GetByEmail(gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(gomock.Any()).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.categoryService.EXPECT().CreateDefaultCategories(gomock.Any()).Return(errors.New("db down"))
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(2)

	user, err := s.authService.Register(s.registerRequest(), "10.0.0.1", "curl/8")
	s.NoError(err)
	s.NotNil(user)
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password"}

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("SecurePass123!", "hashed_password").Return(true)
	s.expectTokens(user)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	tokens, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "SecurePass123!"}, "10.0.0.1", "curl/8")
	s.NoError(err)
	s.Equal("access_token", tokens.AccessToken)
	s.Equal("refresh_token", tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)
}

func (s *AuthServiceTestSuite) TestLogin_ResetsPreviousFailures() {
	user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password", FailedLoginAttempts: 2}

	s.userRepo.EXPECT().GetByLogin("asha@example.com").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(true)
	s.userRepo.EXPECT().ResetFailedLoginAttempts(user.ID).Return(nil)
	s.expectTokens(user)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Login(&dto.LoginRequest{Login: "asha@example.com", Password: "SecurePass123!"}, "", "")
	s.NoError(err)
	s.Equal(0, user.FailedLoginAttempts)
}

func (s *AuthServiceTestSuite) TestLogin_InvalidPassword() {
	user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password"}

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("WrongPassword", "hashed_password").Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(user).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Equal(models.AuditActionFailedLogin, log.Action)
		s.Equal("invalid_password", log.Metadata["reason"])
		return nil
	})

	tokens, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "WrongPassword"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(tokens)
	s.Equal(1, user.FailedLoginAttempts)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUser() {
	s.userRepo.EXPECT().GetByLogin("ghost").Return(nil, repositories.ErrUserNotFound)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Login(&dto.LoginRequest{Login: "ghost", Password: "x"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_ThirdFailureLocksAccount() {
	user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password", FailedLoginAttempts: 2}

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(user).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(2)

	_, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "WrongPassword"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.True(user.IsLocked())

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err = s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "SecurePass123!"}, "", "")
	s.ErrorIs(err, ErrAccountLocked)
}

func (s *AuthServiceTestSuite) TestLogin_LockExpires() {
	lockedAt := time.Now().UTC().Add(-16 * time.Minute)

	s.Run("correct password clears the lock", func() {
		user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password",
			FailedLoginAttempts: models.MaxFailedLoginAttempts, LockedAt: &lockedAt}

		s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
		s.passwordService.EXPECT().ComparePassword("SecurePass123!", "hashed_password").Return(true)
		s.userRepo.EXPECT().ResetFailedLoginAttempts(user.ID).Return(nil)
		s.expectTokens(user)
		s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

		tokens, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "SecurePass123!"}, "", "")
		s.Require().NoError(err)
		s.Equal("access_token", tokens.AccessToken)
		s.False(user.IsLocked())
		s.Zero(user.FailedLoginAttempts)
	})

	s.Run("wrong password starts a new count", func() {
		user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password",
			FailedLoginAttempts: models.MaxFailedLoginAttempts, LockedAt: &lockedAt}

		s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
		s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
		s.userRepo.EXPECT().UpdateFailedLoginAttempts(user).DoAndReturn(func(u *models.User) error {
			s.Equal(1, u.FailedLoginAttempts)
			s.Nil(u.LockedAt)
			return nil
		})
		s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

		_, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "typo"}, "", "")
		s.ErrorIs(err, ErrInvalidCredentials)
	})
}

func (s *AuthServiceTestSuite) TestLogin_LockHoldsWithinDuration() {
	lockedAt := time.Now().UTC().Add(-5 * time.Minute)
	user := &models.User{ID: uuid.New(), Username: "asha", FailedLoginAttempts: models.MaxFailedLoginAttempts, LockedAt: &lockedAt}

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "SecurePass123!"}, "", "")
	s.ErrorIs(err, ErrAccountLocked)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Rotates() {
	user := &models.User{ID: uuid.New(), Username: "asha"}
	stored := &models.RefreshToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

	s.tokenService.EXPECT().ValidateRefreshToken("old_refresh").Return(&models.CustomClaims{UserID: user.ID.String()}, nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(hashToken("old_refresh")).Return(stored, nil)
	s.userRepo.EXPECT().GetByID(user.ID).Return(user, nil)
	s.refreshTokenRepo.EXPECT().Revoke(stored.ID).Return(nil)
	s.expectTokens(user)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	tokens, err := s.authService.RefreshTokens("old_refresh", "", "")
	s.NoError(err)
	s.Equal("refresh_token", tokens.RefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Rejected() {
	userID := uuid.New()
	revokedAt := time.Now()

	tests := []struct {
		name  string
		setup func()
	}{
		{"invalid jwt", func() {
			s.tokenService.EXPECT().ValidateRefreshToken("tok").Return(nil, ErrInvalidToken)
		}},
		{"unknown token", func() {
			s.tokenService.EXPECT().ValidateRefreshToken("tok").Return(&models.CustomClaims{UserID: userID.String()}, nil)
			s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any()).Return(nil, repositories.ErrRefreshTokenNotFound)
		}},
		{"revoked token", func() {
			s.tokenService.EXPECT().ValidateRefreshToken("tok").Return(&models.CustomClaims{UserID: userID.String()}, nil)
			s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any()).Return(&models.RefreshToken{
				UserID: userID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt,
			}, nil)
		}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.setup()
			s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

			tokens, err := s.authService.RefreshTokens("tok", "", "")
			s.ErrorIs(err, ErrInvalidRefreshToken)
			s.Nil(tokens)
		})
	}
}

func (s *AuthServiceTestSuite) TestLogout_Success() {
	userID := uuid.New()
	claims := &models.CustomClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "jti-123"}, UserID: userID.String()}
	expiry := time.Now().Add(15 * time.Minute)

	s.tokenService.EXPECT().ValidateAccessToken("access").Return(claims, nil)
	s.tokenService.EXPECT().GetTokenExpiry("access").Return(expiry, nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(bt *models.BlacklistedToken) error {
		s.Equal("jti-123", bt.JTI)
		s.Equal(userID, bt.UserID)
		s.Equal(expiry, bt.ExpiresAt)
		return nil
	})
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(userID).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	s.NoError(s.authService.Logout("access", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_InvalidTokenStillBlacklistsJTI() {
	s.tokenService.EXPECT().ValidateAccessToken("expired").Return(nil, ErrExpiredToken)
	s.tokenService.EXPECT().GetJTI("expired").Return("jti-old", nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(bt *models.BlacklistedToken) error {
		s.Equal("jti-old", bt.JTI)
		return nil
	})

	s.NoError(s.authService.Logout("expired", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_Garbage() {
	s.tokenService.EXPECT().ValidateAccessToken("garbage").Return(nil, ErrInvalidToken)
	s.tokenService.EXPECT().GetJTI("garbage").Return("", ErrInvalidToken)

	s.NoError(s.authService.Logout("garbage", "", ""))
}

func (s *AuthServiceTestSuite) TestCleanupExpiredTokens() {
	s.refreshTokenRepo.EXPECT().DeleteExpired().Return(int64(3), nil)
	s.blacklistedTokenRepo.EXPECT().DeleteExpired().Return(int64(2), nil)

	n, err := s.authService.CleanupExpiredTokens()
	s.NoError(err)
	s.Equal(int64(5), n)
}

func (s *AuthServiceTestSuite) TestCleanupExpiredTokens_Error() {
	s.refreshTokenRepo.EXPECT().DeleteExpired().Return(int64(0), errors.New("locked"))

	_, err := s.authService.CleanupExpiredTokens()
	s.Error(err)
}

func (s *AuthServiceTestSuite) TestAuditFailureDoesNotBlockLogin() {
	user := &models.User{ID: uuid.New(), Username: "asha", PasswordHash: "hashed_password"}

	s.userRepo.EXPECT().GetByLogin("asha").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(true)
	s.expectTokens(user)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(errors.New("audit table missing"))

	_, err := s.authService.Login(&dto.LoginRequest{Login: "asha", Password: "SecurePass123!"}, "", "")
	s.NoError(err)
}
