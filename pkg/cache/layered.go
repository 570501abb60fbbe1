package cache

import (
	"context"
	"time"
)

// l1TTL bounds how stale the in-process copy of a horizon may be
// relative to the shared Redis entry other instances refresh.
const l1TTL = 30 * time.Second

// LayeredCache fronts Redis with the in-process cache. Reads hit
// memory first; writes go through to Redis and then seed memory.
// Locks always live in Redis so single-flight holds across instances.
type LayeredCache struct {
	mem *MemoryCache
	rdb *RedisCache
}

// NewLayeredCache wraps an already-connected Redis cache.
func NewLayeredCache(rdb *RedisCache) *LayeredCache {
	return &LayeredCache{
		mem: NewMemoryCache(defaultMemoryMax),
		rdb: rdb,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.rdb.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, value, capTTL(ttl))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.rdb.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, dest, l1TTL)
	return nil
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.rdb.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.rdb.Unlock(ctx, key)
}

// Close closes both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.rdb.Close()
}

func capTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > l1TTL {
		return l1TTL
	}
	return ttl
}
