package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionCreatedEvent is the payload published when a transaction is
// stored.
type TransactionCreatedEvent struct {
	EventID         uuid.UUID `json:"eventId"`
	UserID          uuid.UUID `json:"userId"`
	TransactionID   uuid.UUID `json:"transactionId"`
	Type            string    `json:"type"`
	Amount          string    `json:"amount"`
	Category        string    `json:"category,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
	OccurredAt      time.Time `json:"occurredAt"`
}
