package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTransactionRequest adds a transaction. Force skips the duplicate
// check after the client has confirmed the entry.
type CreateTransactionRequest struct {
	Type            string     `json:"type" validate:"required,transaction_type"`
	Amount          string     `json:"amount" validate:"required,money_amount"`
	CategoryID      *uuid.UUID `json:"categoryId"`
	Description     string     `json:"description" validate:"required,max=500"`
	TransactionDate *time.Time `json:"transactionDate"`
	Notes           string     `json:"notes" validate:"omitempty,max=2000"`
	Tags            []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Location        string     `json:"location" validate:"omitempty,max=255"`
	PaymentMethod   string     `json:"paymentMethod" validate:"omitempty,max=50"`
	Force           bool       `json:"force"`

	// RecurringPaymentID makes the add idempotent per payment and date. It is
	// never read from a request body.
	RecurringPaymentID *uuid.UUID `json:"-"`
}

// UpdateTransactionRequest changes only the fields that are set.
type UpdateTransactionRequest struct {
	Type            *string    `json:"type" validate:"omitempty,transaction_type"`
	Amount          *string    `json:"amount" validate:"omitempty,money_amount"`
	CategoryID      *uuid.UUID `json:"categoryId"`
	ClearCategory   bool       `json:"clearCategory"`
	Description     *string    `json:"description" validate:"omitempty,min=1,max=500"`
	TransactionDate *time.Time `json:"transactionDate"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`
	Tags            []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Location        *string    `json:"location" validate:"omitempty,max=255"`
	PaymentMethod   *string    `json:"paymentMethod" validate:"omitempty,max=50"`
}

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
	Limit      int    `json:"limit"`
	Total      int64  `json:"total,omitempty"`
}

type TransactionResponse struct {
	ID              uuid.UUID  `json:"id"`
	Type            string     `json:"type"`
	Amount          string     `json:"amount"`
	FormattedAmount string     `json:"formattedAmount,omitempty"`
	CategoryID      *uuid.UUID `json:"categoryId,omitempty"`
	Category        string     `json:"category,omitempty"`
	Description     string     `json:"description"`
	TransactionDate time.Time  `json:"transactionDate"`
	Notes           string     `json:"notes,omitempty"`
	Tags            []string   `json:"tags"`
	Location        string     `json:"location,omitempty"`
	PaymentMethod   string     `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

type DuplicateCheckRequest struct {
	Amount          string    `json:"amount" validate:"required,money_amount"`
	Description     string    `json:"description" validate:"required"`
	TransactionDate time.Time `json:"transactionDate" validate:"required"`
}

type DuplicateCheckResponse struct {
	IsDuplicate bool                  `json:"isDuplicate"`
	Candidates  []TransactionResponse `json:"candidates"`
}

type TagSuggestionsResponse struct {
	Tags []string `json:"tags"`
}
