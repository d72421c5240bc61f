package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

var ErrInvalidFrequency = errors.New("invalid recurring frequency")

// RecurringPayment is a bill or income that repeats. NextDueDate moves
// forward every time the processor books it; StartDate keeps the anchor
// day so monthly items due on the 31st land on the last day of short
// months without drifting.
type RecurringPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Type        string          `gorm:"type:varchar(10);not null;default:'expense'" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Frequency   string          `gorm:"type:varchar(10);not null;default:'monthly'" json:"frequency"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	NextDueDate time.Time       `gorm:"not null;index" json:"next_due_date"`
	LastRunAt   *time.Time      `json:"last_run_at,omitempty"`
	Active      bool            `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

func (r *RecurringPayment) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Type == "" {
		r.Type = TransactionTypeExpense
	}
	if r.Frequency == "" {
		r.Frequency = FrequencyMonthly
	}
	r.StartDate = truncateToDay(r.StartDate)
	if r.NextDueDate.IsZero() {
		r.NextDueDate = r.StartDate
	}
	r.NextDueDate = truncateToDay(r.NextDueDate)

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	return r.Validate()
}

func (r *RecurringPayment) Validate() error {
	if r.Name == "" {
		return errors.New("recurring payment name is required")
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !IsValidTransactionType(r.Type) {
		return ErrInvalidTransactionType
	}
	if !IsValidFrequency(r.Frequency) {
		return ErrInvalidFrequency
	}
	if r.StartDate.IsZero() {
		return errors.New("recurring payment start date is required")
	}
	return nil
}

// IsDue reports whether the payment should be booked on the given day.
func (r *RecurringPayment) IsDue(now time.Time) bool {
	return r.Active && !truncateToDay(r.NextDueDate).After(truncateToDay(now))
}

// Advance moves NextDueDate forward by one period and records the run.
func (r *RecurringPayment) Advance(ranAt time.Time) {
	r.NextDueDate = NextDueDate(r.StartDate, r.NextDueDate, r.Frequency)
	ran := ranAt.UTC()
	r.LastRunAt = &ran
}

// NextDueDate returns the occurrence after current. Monthly and yearly
// steps keep the anchor's day of month, clamped to the length of the target
// month, so an anchor on the 31st yields Jan 31, Feb 28, Mar 31.
func NextDueDate(anchor, current time.Time, frequency string) time.Time {
	current = truncateToDay(current)
	switch frequency {
	case FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyYearly:
		return clampedDate(current.Year()+1, current.Month(), anchor.UTC().Day())
	default:
		year, month := current.Year(), current.Month()+1
		if month > time.December {
			year, month = year+1, time.January
		}
		return clampedDate(year, month, anchor.UTC().Day())
	}
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (r *RecurringPayment) TableName() string {
	return "recurring_payments"
}

func IsValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}
