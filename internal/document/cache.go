package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mandate/internal/mandate/models"
)

const cacheKeyPrefix = "mandate:pdf:"

// RedisCache stores rendered documents keyed by reference and status, so a
// status change never serves a stale certificate.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(reference string, status models.Status) string {
	return cacheKeyPrefix + reference + ":" + string(status)
}

// Get returns (nil, false, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, reference string, status models.Status) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(reference, status)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached document: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, reference string, status models.Status, data []byte) error {
	if err := c.client.Set(ctx, cacheKey(reference, status), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache document: %w", err)
	}
	return nil
}

// Invalidate drops every cached rendering of reference.
func (c *RedisCache) Invalidate(ctx context.Context, reference string) error {
	keys := make([]string, 0, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		keys = append(keys, cacheKey(reference, st))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached document: %w", err)
	}
	return nil
}
