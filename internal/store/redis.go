package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// ListCache caches the marshalled image list in Redis. Entries are keyed by
// gallery scope (empty scope = shared list) and invalidated after every
// upload or delete.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func key(scope string) string {
	if scope == "" {
		return "images:list"
	}
	return "images:list:" + scope
}

// Get returns the cached payload, or nil on a miss. Redis failures count as
// misses so the cache never blocks a read.
func (c *ListCache) Get(ctx context.Context, scope string) []byte {
	val, err := c.rdb.Get(ctx, key(scope)).Bytes()
	if err != nil {
		return nil
	}
	return val
}

func (c *ListCache) Set(ctx context.Context, scope string, payload []byte) {
	c.rdb.Set(ctx, key(scope), payload, c.ttl)
}

// Invalidate drops the shared entry and, when scoped, the owner's entry.
func (c *ListCache) Invalidate(ctx context.Context, scope string) {
	keys := []string{key("")}
	if scope != "" {
		keys = append(keys, key(scope))
	}
	c.rdb.Del(ctx, keys...)
}
