package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionTemplate is a saved shortcut for a frequently entered
// transaction.
type TransactionTemplate struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Type        string          `gorm:"type:varchar(10);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Description string          `gorm:"type:text" json:"description"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	UsageCount  int             `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

func (t *TransactionTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Name == "" {
		return errors.New("template name is required")
	}
	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// TransactionDescription falls back to the template name when no
// description was saved.
func (t *TransactionTemplate) TransactionDescription() string {
	if t.Description == "" {
		return t.Name
	}
	return t.Description
}

func (t *TransactionTemplate) TableName() string {
	return "transaction_templates"
}
