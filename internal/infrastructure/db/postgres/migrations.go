package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserSettingKey is the session setting row-level security reads the
// requesting user from.
const UserSettingKey = "app.current_user_id"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		phone_no   TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		transaction_id   TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		description      TEXT,
		amount           NUMERIC(14,2) NOT NULL,
		category         TEXT NOT NULL,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN ('Income', 'Expense')),
		date             TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_date_idx ON transactions (user_id, date DESC)`,
	`ALTER TABLE transactions ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE transactions FORCE ROW LEVEL SECURITY`,
	// Sessions that never set the key (the CRUD pool) see every row; the
	// agent executor always sets it.
	`DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_policies
			WHERE tablename = 'transactions' AND policyname = 'transactions_owner'
		) THEN
			CREATE POLICY transactions_owner ON transactions
				USING (
					coalesce(current_setting('` + UserSettingKey + `', true), '') = ''
					OR user_id = current_setting('` + UserSettingKey + `', true)
				);
		END IF;
	END
	$$`,
	`ALTER TABLE users ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE users FORCE ROW LEVEL SECURITY`,
	// Agent-scoped sessions read no user rows at all.
	`DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_policies
			WHERE tablename = 'users' AND policyname = 'users_unscoped_only'
		) THEN
			CREATE POLICY users_unscoped_only ON users
				USING (coalesce(current_setting('` + UserSettingKey + `', true), '') = '');
		END IF;
	END
	$$`,
}

// Migrate applies the schema idempotently in a single transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, stmt := range migrations {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", i, err)
			}
		}
		return nil
	})
}
