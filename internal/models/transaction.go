package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	PaymentMethodUnknown = "Unknown"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
	ErrMissingDescription     = errors.New("transaction description is required")
	ErrMissingTransactionDate = errors.New("transaction date is required")
)

type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type            string          `gorm:"type:varchar(10);not null;index" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	TransactionDate time.Time       `gorm:"not null;index;uniqueIndex:idx_transactions_recurring_occurrence,priority:2" json:"transaction_date"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	Tags            StringList      `gorm:"type:text" json:"tags"`
	Location        string          `gorm:"type:varchar(255)" json:"location,omitempty"`
	PaymentMethod   string          `gorm:"type:varchar(50)" json:"payment_method,omitempty"`

	// RecurringPaymentID is set on bookings made by the recurring processor;
	// one booking per payment and due date.
	RecurringPaymentID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_transactions_recurring_occurrence,priority:1" json:"recurring_payment_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	t.TransactionDate = t.TransactionDate.UTC()
	t.Tags = t.Tags.Normalize()

	return t.Validate()
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now().UTC()
	t.TransactionDate = t.TransactionDate.UTC()
	return t.Validate()
}

func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrMissingDescription
	}
	if t.TransactionDate.IsZero() {
		return ErrMissingTransactionDate
	}
	return nil
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// SignedAmount is negative for expenses.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.IsExpense() {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

func (t *Transaction) TableName() string {
	return "transactions"
}

func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	default:
		return false
	}
}
