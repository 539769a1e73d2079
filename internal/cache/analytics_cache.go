package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AnalyticsCache stores computed analytics payloads in Redis with a short
// TTL. Every method degrades to a miss when Redis is unavailable so callers
// never fail because the cache is down.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewAnalyticsCache constructs the cache. A nil client disables caching.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl, log: log}
}

// Get loads a cached payload into dest and reports whether it was present.
func (c *AnalyticsCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("analytics cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a payload under key for the configured TTL.
func (c *AnalyticsCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("analytics cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops a cached payload.
func (c *AnalyticsCache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("analytics cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
