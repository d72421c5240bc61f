package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"walletwhiz/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

	maxAmount = decimal.NewFromInt(1_000_000_000)
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("theme", validateTheme)
	_ = v.RegisterValidation("priority", validatePriority)
	_ = v.RegisterValidation("frequency", validateFrequency)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("username", validateUsername)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct using the registered rules.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// validateMoneyAmount accepts a positive decimal string with at most two
// decimal places.
func validateMoneyAmount(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	if !amount.IsPositive() || amount.GreaterThan(maxAmount) {
		return false
	}
	return amount.Equal(amount.Round(2))
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(strings.ToLower(fl.Field().String()))
}

func validateTheme(fl validator.FieldLevel) bool {
	return models.IsValidTheme(strings.ToLower(fl.Field().String()))
}

func validatePriority(fl validator.FieldLevel) bool {
	return models.IsValidPriority(strings.ToLower(fl.Field().String()))
}

func validateFrequency(fl validator.FieldLevel) bool {
	return models.IsValidFrequency(strings.ToLower(fl.Field().String()))
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.IsValidBudgetPeriod(strings.ToLower(fl.Field().String()))
}

// validateCurrencyCode checks the ISO 4217 shape only; whether the code is
// seeded is up to the settings service.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(fl.Field().String())
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// FieldErrors flattens validator errors into field -> message pairs.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "money_amount":
		return "must be a positive amount with at most 2 decimal places"
	case "transaction_type":
		return "must be income or expense"
	case "theme":
		return "must be light, dark or system"
	case "priority":
		return "must be low, medium or high"
	case "frequency":
		return "must be daily, weekly, monthly or yearly"
	case "budget_period":
		return "must be weekly, monthly or yearly"
	case "currency_code":
		return "must be a 3-letter currency code"
	case "username":
		return "must be 3-50 letters, digits, dots, dashes or underscores"
	case "hexcolor":
		return "must be a hex colour"
	case "gtfield":
		return "must be after " + fe.Param()
	default:
		return "is invalid"
	}
}
