package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Heatmap colour buckets for daily expense totals.
const (
	HeatmapColorNone     = "#e0e0e0"
	HeatmapColorLow      = "#4CAF50"
	HeatmapColorModerate = "#FFEB3B"
	HeatmapColorHigh     = "#FF9800"
	HeatmapColorExtreme  = "#F44336"
)

var (
	heatmapLowLimit      = decimal.NewFromInt(500)
	heatmapModerateLimit = decimal.NewFromInt(2000)
	heatmapHighLimit     = decimal.NewFromInt(5000)

	// AchievementSavingsThreshold is the monthly saving that earns a badge.
	AchievementSavingsThreshold = decimal.NewFromInt(5000)
)

// HeatmapColor picks the colour bucket for a day's spending.
func HeatmapColor(amount decimal.Decimal) string {
	switch {
	case amount.IsZero():
		return HeatmapColorNone
	case amount.LessThan(heatmapLowLimit):
		return HeatmapColorLow
	case amount.LessThan(heatmapModerateLimit):
		return HeatmapColorModerate
	case amount.LessThan(heatmapHighLimit):
		return HeatmapColorHigh
	default:
		return HeatmapColorExtreme
	}
}

type CategoryAmount struct {
	CategoryName string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
}

type Dashboard struct {
	Month              int              `json:"month"`
	Year               int              `json:"year"`
	Income             decimal.Decimal  `json:"income"`
	Expense            decimal.Decimal  `json:"expense"`
	Balance            decimal.Decimal  `json:"balance"`
	SavingsRate        float64          `json:"savings_rate"`
	CategoryExpenses   []CategoryAmount `json:"category_expenses"`
	RecentTransactions []Transaction    `json:"recent_transactions"`
}

type MonthlyTotal struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type HeatmapDay struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Color  string          `json:"color"`
}

type Achievement struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

type PaymentMethodStats struct {
	Counts   map[string]int64 `json:"counts"`
	MostUsed string           `json:"most_used"`
}

type SpendingPrediction struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Categories []CategoryAmount `json:"categories"`
	Total      decimal.Decimal  `json:"total"`
}

// MonthlySummary feeds the monthly summary CSV.
type MonthlySummary struct {
	Month      int              `json:"month"`
	Year       int              `json:"year"`
	Income     decimal.Decimal  `json:"income"`
	Expense    decimal.Decimal  `json:"expense"`
	Balance    decimal.Decimal  `json:"balance"`
	Categories []CategoryAmount `json:"categories"`
}

// Backup is the portable JSON snapshot of one user's data.
type Backup struct {
	Version           int                   `json:"version"`
	ExportedAt        time.Time             `json:"exported_at"`
	Transactions      []Transaction         `json:"transactions"`
	Categories        []Category            `json:"categories"`
	Budgets           []Budget              `json:"budgets"`
	Goals             []SavingsGoal         `json:"goals"`
	Templates         []TransactionTemplate `json:"templates"`
	LendingRecords    []LendingRecord       `json:"lending_records"`
	RecurringPayments []RecurringPayment    `json:"recurring_payments"`
}

// ImportResult reports what a CSV import did.
type ImportResult struct {
	Imported   int           `json:"imported"`
	Duplicates int           `json:"duplicates"`
	Errors     []ImportError `json:"errors,omitempty"`
}

type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
