package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"walletwhiz/internal/dto"
	"walletwhiz/internal/models"
	"walletwhiz/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrInvalidTheme     = errors.New("invalid theme")
)

// SettingsService owns the per-user display preferences.
type SettingsService struct {
	userRepo     repositories.UserRepositoryInterface
	currencyRepo repositories.CurrencyRepositoryInterface
	logger       *slog.Logger
}

func NewSettingsService(
	userRepo repositories.UserRepositoryInterface,
	currencyRepo repositories.CurrencyRepositoryInterface,
	logger *slog.Logger,
) SettingsServiceInterface {
	return &SettingsService{
		userRepo:     userRepo,
		currencyRepo: currencyRepo,
		logger:       logger,
	}
}

func (s *SettingsService) GetProfile(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetSettings resolves the stored currency code; an unknown code is reported
// without a currency rather than failing the request.
func (s *SettingsService) GetSettings(userID uuid.UUID) (*models.UserSettings, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	settings := &models.UserSettings{Theme: user.Theme}

	currency, err := s.currencyRepo.GetByCode(user.CurrencyCode)
	switch {
	case err == nil:
		settings.Currency = currency
	case errors.Is(err, repositories.ErrCurrencyNotFound):
		s.logger.Warn("user has unknown currency",
			slog.String("user_id", userID.String()),
			slog.String("currency", user.CurrencyCode))
	default:
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}

	return settings, nil
}

func (s *SettingsService) UpdateSettings(userID uuid.UUID, req *dto.UpdateSettingsRequest) (*models.UserSettings, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	theme := user.Theme
	if req.Theme != nil {
		theme = strings.ToLower(*req.Theme)
		if !models.IsValidTheme(theme) {
			return nil, ErrInvalidTheme
		}
	}

	currencyCode := user.CurrencyCode
	if req.CurrencyCode != nil {
		currencyCode = strings.ToUpper(*req.CurrencyCode)
		if _, err := s.currencyRepo.GetByCode(currencyCode); err != nil {
			if errors.Is(err, repositories.ErrCurrencyNotFound) {
				return nil, ErrCurrencyNotFound
			}
			return nil, fmt.Errorf("failed to get currency: %w", err)
		}
	}

	if err := s.userRepo.UpdateSettings(userID, theme, currencyCode); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return s.GetSettings(userID)
}

func (s *SettingsService) ListCurrencies() ([]models.Currency, error) {
	currencies, err := s.currencyRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

func (s *SettingsService) FormatAmount(userID uuid.UUID, amount decimal.Decimal) (string, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return "", err
	}
	return settings.Currency.Format(amount.InexactFloat64()), nil
}
