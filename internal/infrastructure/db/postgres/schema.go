package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaDescriber renders the live column layout of the agent-queryable
// tables. Sample rows are never included.
type SchemaDescriber struct {
	pool    *pgxpool.Pool
	tables  []string
	timeout time.Duration
}

func NewSchemaDescriber(pool *pgxpool.Pool, tables []string, timeout time.Duration) *SchemaDescriber {
	return &SchemaDescriber{pool: pool, tables: tables, timeout: timeout}
}

type column struct {
	table    string
	name     string
	dataType string
	nullable bool
}

func (d *SchemaDescriber) DescribeSchema(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	rows, err := d.pool.Query(ctx, `
		SELECT table_name, column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ANY($1)
		ORDER BY table_name, ordinal_position
	`, d.tables)
	if err != nil {
		return "", fmt.Errorf("describe schema: %w", err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.table, &c.name, &c.dataType, &c.nullable); err != nil {
			return "", fmt.Errorf("describe schema: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("describe schema: %w", err)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("describe schema: none of %v exist", d.tables)
	}
	return renderSchema(cols), nil
}

func renderSchema(cols []column) string {
	var b strings.Builder
	current := ""
	for _, c := range cols {
		if c.table != current {
			if current != "" {
				b.WriteString("\n)\n\n")
			}
			current = c.table
			fmt.Fprintf(&b, "CREATE TABLE %s (", c.table)
		} else {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "\n\t%s %s", c.name, strings.ToUpper(c.dataType))
		if !c.nullable {
			b.WriteString(" NOT NULL")
		}
	}
	if current != "" {
		b.WriteString("\n)")
	}
	return b.String()
}
