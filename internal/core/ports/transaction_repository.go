package ports

import (
	"context"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// TransactionRepository defines persistence for ledger entries.
type TransactionRepository interface {
	// Insert stores t. It reports false without error when a row with the same
	// transaction id already exists.
	Insert(ctx context.Context, t *domain.Transaction) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListByUser returns the user's transactions, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}
