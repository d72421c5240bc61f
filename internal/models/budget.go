package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"
	BudgetPeriodYearly  = "yearly"

	// Thresholds, in percent of the limit, for budget insights.
	BudgetWarningPercent  = 80
	BudgetExceededPercent = 100
)

var (
	ErrInvalidBudgetPeriod = errors.New("invalid budget period")
	ErrInvalidBudgetLimit  = errors.New("budget limit cannot be negative")
)

// Budget is unique per user and category; setting it again overwrites.
type Budget struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"user_id"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"category_id"`
	MonthlyLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_limit"`
	Period       string          `gorm:"type:varchar(10);not null;default:'monthly'" json:"period"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Period == "" {
		b.Period = BudgetPeriodMonthly
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	return b.Validate()
}

func (b *Budget) Validate() error {
	if b.MonthlyLimit.IsNegative() {
		return ErrInvalidBudgetLimit
	}
	if !IsValidBudgetPeriod(b.Period) {
		return ErrInvalidBudgetPeriod
	}
	return nil
}

func (b *Budget) TableName() string {
	return "budgets"
}

func IsValidBudgetPeriod(period string) bool {
	switch period {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	default:
		return false
	}
}

// BudgetStatus is a budget measured against one month of spending.
type BudgetStatus struct {
	BudgetID     uuid.UUID       `json:"budget_id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category"`
	Limit        decimal.Decimal `json:"limit"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   float64         `json:"percentage"`
}

// NewBudgetStatus derives remaining and percentage; a zero limit reports 0%.
func NewBudgetStatus(budgetID, categoryID uuid.UUID, name string, limit, spent decimal.Decimal) BudgetStatus {
	status := BudgetStatus{
		BudgetID:     budgetID,
		CategoryID:   categoryID,
		CategoryName: name,
		Limit:        limit,
		Spent:        spent,
		Remaining:    limit.Sub(spent),
	}
	if limit.IsPositive() {
		status.Percentage = spent.Div(limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return status
}

func (s BudgetStatus) IsExceeded() bool {
	return s.Percentage > BudgetExceededPercent
}

func (s BudgetStatus) IsNearLimit() bool {
	return s.Percentage > BudgetWarningPercent && s.Percentage <= BudgetExceededPercent
}

// BudgetSuggestion is advice for one expense category. SuggestedLimit is
// zero when the advice is qualitative only.
type BudgetSuggestion struct {
	CategoryID     uuid.UUID       `json:"category_id"`
	CategoryName   string          `json:"category"`
	CurrentSpent   decimal.Decimal `json:"current_spent"`
	AverageAmount  decimal.Decimal `json:"average_transaction"`
	SuggestedLimit decimal.Decimal `json:"suggested_limit"`
	Message        string          `json:"message"`
}
