package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	ErrInvalidGoalTarget = errors.New("goal target amount must be positive")
	ErrInvalidPriority   = errors.New("invalid priority")
)

type SavingsGoal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_amount"`
	TargetDate    *time.Time      `json:"target_date,omitempty"`
	Priority      string          `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (g *SavingsGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Priority == "" {
		g.Priority = PriorityMedium
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	return g.Validate()
}

func (g *SavingsGoal) Validate() error {
	if g.Name == "" {
		return errors.New("goal name is required")
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidGoalTarget
	}
	if !IsValidPriority(g.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

// AddProgress adds to the saved amount and stamps completion the first time
// the target is reached.
func (g *SavingsGoal) AddProgress(amount decimal.Decimal) {
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CompletedAt == nil && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		now := time.Now().UTC()
		g.CompletedAt = &now
	}
}

func (g *SavingsGoal) ProgressPercentage() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// DaysRemaining is nil without a target date and negative once overdue.
func (g *SavingsGoal) DaysRemaining(now time.Time) *int {
	if g.TargetDate == nil {
		return nil
	}
	today := truncateToDay(now)
	target := truncateToDay(*g.TargetDate)
	days := int(math.Round(target.Sub(today).Hours() / 24))
	return &days
}

func (g *SavingsGoal) TableName() string {
	return "savings_goals"
}

func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// PriorityRank orders priorities; higher is more urgent.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// GoalProgress is a goal as shown in listings.
type GoalProgress struct {
	SavingsGoal
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysRemaining      *int    `json:"days_remaining,omitempty"`
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
