package ports

import (
	"context"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// Transaction sources, used for metrics and logs.
const (
	SourceAPI   = "api"
	SourceAgent = "agent"
)

// WriteTransactionInput is the unvalidated form of a new transaction.
type WriteTransactionInput struct {
	// TransactionID is optional; supplying it makes retries idempotent.
	TransactionID   string
	UserID          string
	Title           string
	Description     *string
	Amount          domain.AmountInput
	Category        string
	TransactionType string
	// Date is optional; empty or unparsable values fall back to now.
	Date   string
	Source string
}

// TransactionService validates and persists transactions.
type TransactionService interface {
	Write(ctx context.Context, in WriteTransactionInput) (string, error)
	List(ctx context.Context, userID string) ([]domain.Transaction, error)
}
