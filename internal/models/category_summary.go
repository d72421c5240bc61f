package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategorySummary is one row of a per-category aggregation. CategoryName is
// empty for uncategorised transactions.
type CategorySummary struct {
	CategoryID       *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName     string          `json:"category"`
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AverageAmount    decimal.Decimal `json:"average_amount"`
}

// TypeTotals holds income and expense sums for a period.
type TypeTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

func (t TypeTotals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
