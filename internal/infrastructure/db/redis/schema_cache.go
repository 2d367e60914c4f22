package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const schemaKeyPrefix = "finmanager:schema:"

// SchemaCache stores rendered schema descriptions in Redis so every replica
// shares one copy.
type SchemaCache struct {
	client *redis.Client
}

func NewSchemaCache(client *redis.Client) *SchemaCache {
	return &SchemaCache{client: client}
}

func (c *SchemaCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, schemaKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("schema cache get: %w", err)
	}
	return v, true, nil
}

func (c *SchemaCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, schemaKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("schema cache set: %w", err)
	}
	return nil
}
