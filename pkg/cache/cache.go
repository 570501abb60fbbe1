package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss reports a key with no live entry.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the surface the forecast read path needs: TTL'd JSON
// get/set plus a best-effort lock so only one caller recomputes an
// expired horizon at a time.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// GenerateKey joins a namespace prefix and an id, e.g.
// "forecast:hourly" + "main" -> "forecast:hourly:main".
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}
