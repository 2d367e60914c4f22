// Package cache holds in-process caches used when no shared cache is
// configured.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// LocalSchemaCache keeps schema descriptions in process memory.
type LocalSchemaCache struct {
	cache *ristretto.Cache[string, string]
}

func NewLocalSchemaCache() (*LocalSchemaCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 1000,
		MaxCost:     1 << 20, // bytes of description text
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("init local cache: %w", err)
	}
	return &LocalSchemaCache{cache: c}, nil
}

func (c *LocalSchemaCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.cache.Get(key)
	return v, ok, nil
}

// Set is applied asynchronously; a following Get may still miss.
func (c *LocalSchemaCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Wait blocks until pending writes are applied.
func (c *LocalSchemaCache) Wait() {
	c.cache.Wait()
}

func (c *LocalSchemaCache) Close() {
	c.cache.Close()
}
