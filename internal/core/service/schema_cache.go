package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/metrics"
)

// CachedSchemaDescriber serves schema descriptions from a cache, falling back
// to the live describer on a miss or a cache error.
type CachedSchemaDescriber struct {
	next  ports.SchemaDescriber
	cache ports.SchemaCache
	key   string
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedSchemaDescriber(next ports.SchemaDescriber, cache ports.SchemaCache, key string, ttl time.Duration, log zerolog.Logger) *CachedSchemaDescriber {
	return &CachedSchemaDescriber{next: next, cache: cache, key: key, ttl: ttl, log: log}
}

func (c *CachedSchemaDescriber) DescribeSchema(ctx context.Context) (string, error) {
	desc, ok, err := c.cache.Get(ctx, c.key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("schema cache get failed")
	} else if ok {
		metrics.SchemaCacheTotal.WithLabelValues("hit").Inc()
		return desc, nil
	}
	metrics.SchemaCacheTotal.WithLabelValues("miss").Inc()

	desc, err = c.next.DescribeSchema(ctx)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, c.key, desc, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("schema cache set failed")
	}
	return desc, nil
}
