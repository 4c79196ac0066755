package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

const defaultCachePrefix = "devclub:ref"

// Cache implements port.Cache on Redis strings under a key prefix.
type Cache struct {
	client red.UniversalClient
	prefix string
}

// NewCache wires a Redis client into a prefixed cache.
func NewCache(client red.UniversalClient, keyPrefix string) *Cache {
	prefix := strings.TrimSuffix(strings.TrimSpace(keyPrefix), ":")
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &Cache{client: client, prefix: prefix}
}

// Get returns the stored value or port.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, port.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value for ttl. A non-positive ttl is rejected so entries never outlive a refresh.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys; absent keys are ignored.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + strings.TrimSpace(k)
}
