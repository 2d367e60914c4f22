package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/sqlguard"
)

const noRows = "No rows returned."

// QueryExecutor runs guarded agent queries inside read-only transactions.
// Pool should connect as a role that can only SELECT.
type QueryExecutor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	log     zerolog.Logger
}

func NewQueryExecutor(pool *pgxpool.Pool, timeout time.Duration, log zerolog.Logger) *QueryExecutor {
	return &QueryExecutor{pool: pool, timeout: timeout, log: log}
}

func (e *QueryExecutor) ExecuteReadOnly(ctx context.Context, userID string, stmt sqlguard.Statement, maxRows int) (string, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return "", fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT set_config($1, $2, true)`, UserSettingKey, userID); err != nil {
		return "", fmt.Errorf("bind user scope: %w", err)
	}
	if e.timeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", e.timeout.Milliseconds())); err != nil {
			return "", fmt.Errorf("set statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, stmt.String())
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var (
		data      [][]any
		truncated bool
	)
	for rows.Next() {
		if maxRows > 0 && len(data) == maxRows {
			truncated = true
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read row: %w", err)
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}

	e.log.Debug().Int("rows", len(data)).Bool("truncated", truncated).Msg("history query executed")
	return formatRows(columns, data, truncated), nil
}

// formatRows renders a result set as a header line and one " | " separated
// line per row.
func formatRows(columns []string, rows [][]any, truncated bool) string {
	if len(rows) == 0 {
		return noRows
	}
	var b strings.Builder
	b.WriteString(strings.Join(columns, " | "))
	for _, row := range rows {
		b.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	if truncated {
		fmt.Fprintf(&b, "\n(showing the first %d rows only)", len(rows))
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return "NULL"
		}
		return formatValue(dv)
	default:
		return fmt.Sprint(x)
	}
}
