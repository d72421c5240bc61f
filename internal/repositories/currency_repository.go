package repositories

import (
	"errors"
	"fmt"
	"strings"

	"walletwhiz/internal/models"

	"gorm.io/gorm"
)

var ErrCurrencyNotFound = errors.New("currency not found")

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepositoryInterface {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) List() ([]models.Currency, error) {
	var currencies []models.Currency
	if err := r.db.Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

func (r *currencyRepository) GetByCode(code string) (*models.Currency, error) {
	var currency models.Currency
	if err := r.db.Where("code = ?", strings.ToUpper(code)).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}
