package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LendingRecord tracks money owed to a person.
type LendingRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Person    string          `gorm:"type:varchar(100);not null" json:"person"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Reason    string          `gorm:"type:text" json:"reason,omitempty"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	Paid      bool            `gorm:"not null;default:false" json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

func (l *LendingRecord) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.Person == "" {
		return errors.New("person is required")
	}
	if !l.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (l *LendingRecord) MarkPaid() {
	now := time.Now().UTC()
	l.Paid = true
	l.PaidAt = &now
}

func (l *LendingRecord) IsOverdue(now time.Time) bool {
	return !l.Paid && l.DueDate != nil && l.DueDate.Before(truncateToDay(now))
}

func (l *LendingRecord) TableName() string {
	return "lending_records"
}

type LendingBalance struct {
	Owed decimal.Decimal `json:"owed"`
	Paid decimal.Decimal `json:"paid"`
}

func (b LendingBalance) Summary() string {
	return fmt.Sprintf("You owe %s, Paid: %s", b.Owed.StringFixed(2), b.Paid.StringFixed(2))
}
