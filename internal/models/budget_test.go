package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBudgetStatus(t *testing.T) {
	tests := []struct {
		name          string
		limit         int64
		spent         int64
		wantRemaining int64
		wantPercent   float64
		exceeded      bool
		nearLimit     bool
	}{
		{name: "under budget", limit: 1000, spent: 500, wantRemaining: 500, wantPercent: 50},
		{name: "near limit", limit: 1000, spent: 850, wantRemaining: 150, wantPercent: 85, nearLimit: true},
		{name: "exactly at limit", limit: 1000, spent: 1000, wantRemaining: 0, wantPercent: 100, nearLimit: true},
		{name: "exceeded", limit: 1000, spent: 1200, wantRemaining: -200, wantPercent: 120, exceeded: true},
		{name: "zero limit", limit: 0, spent: 300, wantRemaining: -300, wantPercent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewBudgetStatus(uuid.New(), uuid.New(), "Shopping",
				decimal.NewFromInt(tt.limit), decimal.NewFromInt(tt.spent))

			assert.True(t, status.Remaining.Equal(decimal.NewFromInt(tt.wantRemaining)))
			assert.InDelta(t, tt.wantPercent, status.Percentage, 0.001)
			assert.Equal(t, tt.exceeded, status.IsExceeded())
			assert.Equal(t, tt.nearLimit, status.IsNearLimit())
		})
	}
}

func TestBudget_Validate(t *testing.T) {
	require.NoError(t, (&Budget{MonthlyLimit: decimal.NewFromInt(10), Period: BudgetPeriodWeekly}).Validate())
	assert.ErrorIs(t, (&Budget{MonthlyLimit: decimal.NewFromInt(-1), Period: BudgetPeriodMonthly}).Validate(), ErrInvalidBudgetLimit)
	assert.ErrorIs(t, (&Budget{MonthlyLimit: decimal.NewFromInt(1), Period: "daily"}).Validate(), ErrInvalidBudgetPeriod)
}

func TestSavingsGoal_Progress(t *testing.T) {
	goal := SavingsGoal{Name: "Laptop", TargetAmount: decimal.NewFromInt(80000), Priority: PriorityHigh}
	require.NoError(t, goal.Validate())

	goal.AddProgress(decimal.NewFromInt(20000))
	assert.InDelta(t, 25.0, goal.ProgressPercentage(), 0.001)
	assert.Nil(t, goal.CompletedAt)

	goal.AddProgress(decimal.NewFromInt(60000))
	assert.InDelta(t, 100.0, goal.ProgressPercentage(), 0.001)
	assert.NotNil(t, goal.CompletedAt)
}

func TestSavingsGoal_DaysRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	target := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, (&SavingsGoal{}).DaysRemaining(now))
	assert.Equal(t, 10, *(&SavingsGoal{TargetDate: &target}).DaysRemaining(now))
	assert.Equal(t, -2, *(&SavingsGoal{TargetDate: &past}).DaysRemaining(now))
}

func TestSavingsGoal_Validate(t *testing.T) {
	assert.ErrorIs(t, (&SavingsGoal{Name: "x", TargetAmount: decimal.Zero, Priority: PriorityLow}).Validate(), ErrInvalidGoalTarget)
	assert.ErrorIs(t, (&SavingsGoal{Name: "x", TargetAmount: decimal.NewFromInt(1), Priority: "urgent"}).Validate(), ErrInvalidPriority)
}

func TestRecurringPayment_IsDue(t *testing.T) {
	today := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)

	due := RecurringPayment{Active: true, NextDueDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)}
	overdue := RecurringPayment{Active: true, NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}
	future := RecurringPayment{Active: true, NextDueDate: time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC)}
	paused := RecurringPayment{Active: false, NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}

	assert.True(t, due.IsDue(today))
	assert.True(t, overdue.IsDue(today))
	assert.False(t, future.IsDue(today))
	assert.False(t, paused.IsDue(today))
}

func TestLendingBalance_Summary(t *testing.T) {
	balance := LendingBalance{Owed: decimal.NewFromInt(1500), Paid: decimal.NewFromFloat(250.5)}
	assert.Equal(t, "You owe 1500.00, Paid: 250.50", balance.Summary())
}

func TestHeatmapColor(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, HeatmapColorNone},
		{120, HeatmapColorLow},
		{499.99, HeatmapColorLow},
		{500, HeatmapColorModerate},
		{1999, HeatmapColorModerate},
		{2000, HeatmapColorHigh},
		{4999, HeatmapColorHigh},
		{5000, HeatmapColorExtreme},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HeatmapColor(decimal.NewFromFloat(tt.amount)), "amount %v", tt.amount)
	}
}

func TestDefaultCategories(t *testing.T) {
	userID := uuid.New()
	categories := DefaultCategories(userID)

	require.Len(t, categories, 10)
	var expense, income int
	for _, c := range categories {
		assert.Equal(t, userID, c.UserID)
		require.NoError(t, c.Validate())
		if c.Type == TransactionTypeExpense {
			expense++
		} else {
			income++
		}
	}
	assert.Equal(t, 6, expense)
	assert.Equal(t, 4, income)
}
