package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Names of the categories every new user starts with. The categorizer's
// keyword table resolves to these names.
const (
	CategoryFoodDining     = "Food & Dining"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryBillsUtilities = "Bills & Utilities"
	CategoryHealthcare     = "Healthcare"
	CategorySalary         = "Salary"
	CategoryFreelance      = "Freelance"
	CategoryInvestment     = "Investment"
	CategoryOtherIncome    = "Other Income"
	CategoryOther          = "Other"
)

const (
	CategorizationMethodKeyword  = "KEYWORD"
	CategorizationMethodMapping  = "MAPPING"
	CategorizationMethodManual   = "MANUAL"
	CategorizationMethodFallback = "FALLBACK"
)

var ErrInvalidCategoryName = errors.New("category name is required")

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name_type" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_user_name_type" json:"name"`
	Type      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_categories_user_name_type" json:"type"`
	Icon      string    `gorm:"type:varchar(50)" json:"icon,omitempty"`
	Color     string    `gorm:"type:varchar(7)" json:"color,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return c.Validate()
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCategoryName
	}
	if !IsValidTransactionType(c.Type) {
		return ErrInvalidTransactionType
	}
	return nil
}

func (c *Category) TableName() string {
	return "categories"
}

// DefaultCategories returns the starter set created on registration.
func DefaultCategories(userID uuid.UUID) []Category {
	defaults := []struct {
		name, kind, icon string
	}{
		{CategoryFoodDining, TransactionTypeExpense, "utensils"},
		{CategoryTransportation, TransactionTypeExpense, "car"},
		{CategoryShopping, TransactionTypeExpense, "shopping-bag"},
		{CategoryEntertainment, TransactionTypeExpense, "film"},
		{CategoryBillsUtilities, TransactionTypeExpense, "file-invoice"},
		{CategoryHealthcare, TransactionTypeExpense, "heartbeat"},
		{CategorySalary, TransactionTypeIncome, "money-bill"},
		{CategoryFreelance, TransactionTypeIncome, "laptop"},
		{CategoryInvestment, TransactionTypeIncome, "chart-line"},
		{CategoryOtherIncome, TransactionTypeIncome, "plus-circle"},
	}

	categories := make([]Category, 0, len(defaults))
	for _, d := range defaults {
		categories = append(categories, Category{
			UserID: userID,
			Name:   d.name,
			Type:   d.kind,
			Icon:   d.icon,
		})
	}
	return categories
}

// CategorizationResult explains how a category was picked. Category is nil
// when nothing matched.
type CategorizationResult struct {
	Category       *Category `json:"category,omitempty"`
	CategoryName   string    `json:"category_name,omitempty"`
	Method         string    `json:"method"`
	Confidence     float64   `json:"confidence"`
	MatchedPattern string    `json:"matched_pattern,omitempty"`
}
