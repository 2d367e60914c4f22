package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

const transactionColumns = `transaction_id, user_id, title, description, amount::text, category, transaction_type, date`

type TransactionRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewTransactionRepository(pool *pgxpool.Pool, timeout time.Duration) *TransactionRepository {
	return &TransactionRepository{pool: pool, timeout: timeout}
}

func (r *TransactionRepository) Insert(ctx context.Context, t *domain.Transaction) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO transactions (transaction_id, user_id, title, description, amount, category, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Description,
		t.Amount.String(),
		string(t.Category),
		string(t.Type),
		t.Date,
	)
	if err != nil {
		return false, fmt.Errorf("%w: insert transaction: %v", domain.ErrPersistence, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s not found", domain.ErrPersistence, id)
		}
		return nil, fmt.Errorf("%w: find transaction: %v", domain.ErrPersistence, err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, transaction_id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", domain.ErrPersistence, err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", domain.ErrPersistence, err)
	}
	return txs, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		amount   string
		category string
		txType   string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &amount, &category, &txType, &t.Date); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Category = domain.Category(category)
	t.Type = domain.TransactionType(txType)
	t.Date = t.Date.UTC()
	return &t, nil
}
