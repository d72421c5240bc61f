package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilters narrows transaction listings. Zero values mean "any".
type TransactionFilters struct {
	UserID     uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Type       string
	CategoryID *uuid.UUID
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     string
	Tag        string
	Offset     int
	Limit      int
}
