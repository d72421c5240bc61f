package dto

import (
	"time"

	"github.com/google/uuid"
)

type BudgetRequest struct {
	CategoryID   uuid.UUID  `json:"categoryId" validate:"required"`
	MonthlyLimit string     `json:"monthlyLimit" validate:"required,money_amount"`
	Period       string     `json:"period" validate:"omitempty,budget_period"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate" validate:"omitempty,gtfield=StartDate"`
}

type BudgetSuggestionResponse struct {
	CategoryID     uuid.UUID `json:"categoryId"`
	SuggestedLimit string    `json:"suggestedLimit"`
}

type GoalRequest struct {
	Name         string     `json:"name" validate:"required,max=100"`
	TargetAmount string     `json:"targetAmount" validate:"required,money_amount"`
	TargetDate   *time.Time `json:"targetDate"`
	Priority     string     `json:"priority" validate:"omitempty,priority"`
}

type UpdateGoalRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=100"`
	TargetAmount *string    `json:"targetAmount" validate:"omitempty,money_amount"`
	TargetDate   *time.Time `json:"targetDate"`
	Priority     *string    `json:"priority" validate:"omitempty,priority"`
	IsActive     *bool      `json:"isActive"`
}

type GoalProgressRequest struct {
	Amount string `json:"amount" validate:"required,money_amount"`
}

type TemplateRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Type        string     `json:"type" validate:"required,transaction_type"`
	Amount      string     `json:"amount" validate:"required,money_amount"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	Notes       string     `json:"notes" validate:"omitempty,max=2000"`
}

type UseTemplateRequest struct {
	TransactionDate *time.Time `json:"transactionDate"`
}

type LendingRequest struct {
	Person  string     `json:"person" validate:"required,max=100"`
	Amount  string     `json:"amount" validate:"required,money_amount"`
	Reason  string     `json:"reason" validate:"omitempty,max=500"`
	DueDate *time.Time `json:"dueDate"`
}

type LendingBalanceResponse struct {
	Owed    string `json:"owed"`
	Paid    string `json:"paid"`
	Summary string `json:"summary"`
}

type RecurringPaymentRequest struct {
	Name       string     `json:"name" validate:"required,max=100"`
	Type       string     `json:"type" validate:"omitempty,transaction_type"`
	Amount     string     `json:"amount" validate:"required,money_amount"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Frequency  string     `json:"frequency" validate:"required,frequency"`
	StartDate  time.Time  `json:"startDate" validate:"required"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// RecurringRunResult summarises one pass of the recurring processor.
type RecurringRunResult struct {
	Checked int `json:"checked"`
	Booked  int `json:"booked"`
	Failed  int `json:"failed"`
}
