package ports

import (
	"context"
	"time"

	"github.com/duveen2546R/FinManager/internal/core/sqlguard"
)

// SchemaDescriber renders the live description of the queryable tables.
type SchemaDescriber interface {
	DescribeSchema(ctx context.Context) (string, error)
}

// QueryExecutor runs a guarded statement with read-only privileges, scoped to
// userID at the database level, and renders at most maxRows rows as text.
type QueryExecutor interface {
	ExecuteReadOnly(ctx context.Context, userID string, stmt sqlguard.Statement, maxRows int) (string, error)
}

// SchemaCache stores rendered schema descriptions.
type SchemaCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RateLimiter reports whether another call for key is allowed in the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
