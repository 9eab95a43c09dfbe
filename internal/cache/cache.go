package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/metrics"
)

// DefaultTTL is applied when Set is called with a zero TTL.
const DefaultTTL = time.Hour

// Cache is a JSON cache over Redis. All operations degrade gracefully: a
// miss, a marshalling problem or an unreachable Redis never surfaces as an
// error to callers, reads just fall through to the source of truth.
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

// New creates a cache backed by Redis. When cfg.Enabled is false the cache
// is a no-op and every Get misses.
func New(cfg config.RedisConfig, log *logger.Logger) *Cache {
	if !cfg.Enabled {
		return &Cache{logger: log}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Cache{
		client: client,
		logger: log,
	}
}

// Ping verifies the Redis connection when the cache is enabled.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Key builds a namespaced cache key.
func Key(prefix, identifier string) string {
	return prefix + ":" + identifier
}

// Get unmarshals the cached value into dest and reports whether it was a
// hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debugf("Cache MISS for key: %s", key)
		metrics.RecordCacheOp("get", "miss")
		return false
	}
	if err != nil {
		c.logger.With("key", key).ErrorWithErr(err, "Error getting cache key")
		metrics.RecordCacheOp("get", "error")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.With("key", key).ErrorWithErr(err, "Error decoding cached value")
		metrics.RecordCacheOp("get", "error")
		return false
	}

	c.logger.Debugf("Cache HIT for key: %s", key)
	metrics.RecordCacheOp("get", "hit")
	return true
}

// Set stores a value as JSON. A zero ttl uses DefaultTTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.With("key", key).ErrorWithErr(err, "Error encoding value for cache")
		metrics.RecordCacheOp("set", "error")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.With("key", key).ErrorWithErr(err, "Error setting cache key")
		metrics.RecordCacheOp("set", "error")
		return
	}
	metrics.RecordCacheOp("set", "ok")
}

// Del removes keys.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.ErrorWithErr(err, "Error deleting cache keys")
		metrics.RecordCacheOp("del", "error")
		return
	}
	metrics.RecordCacheOp("del", "ok")
}

// DelPattern removes all keys matching a glob pattern.
func (c *Cache) DelPattern(ctx context.Context, pattern string) {
	if c.client == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.With("pattern", pattern).ErrorWithErr(err, "Error scanning cache keys")
		metrics.RecordCacheOp("del_pattern", "error")
		return
	}
	c.Del(ctx, keys...)
}
