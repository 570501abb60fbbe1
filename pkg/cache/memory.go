package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// memEntry holds one cached value as marshaled JSON so Get can decode
// into any destination type, same as the Redis layer.
type memEntry struct {
	data     []byte
	expireAt time.Time
	lastRead time.Time
}

func (e *memEntry) expired(now time.Time) bool {
	return now.After(e.expireAt)
}

// MemoryCache is the in-process layer: one forecast horizon per meter
// plus lock sentinels, so the bound stays small. When the bound is hit
// the least recently read entry is evicted; a background sweep drops
// expired entries between reads.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	max     int
	sweep   *time.Ticker
	done    chan struct{}
}

const (
	defaultMemoryMax   = 256
	defaultMemorySweep = time.Minute
	defaultMemoryTTL   = time.Hour
)

// NewMemoryCache creates the in-process cache and starts its sweep
// loop. max <= 0 falls back to the default bound.
func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = defaultMemoryMax
	}
	mc := &MemoryCache{
		entries: make(map[string]*memEntry),
		max:     max,
		sweep:   time.NewTicker(defaultMemorySweep),
		done:    make(chan struct{}),
	}
	go mc.sweepLoop()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := marshalValue(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}

	now := time.Now()
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.entries[key]; !ok && len(mc.entries) >= mc.max {
		mc.evictOldest()
	}
	mc.entries[key] = &memEntry{data: data, expireAt: now.Add(ttl), lastRead: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	now := time.Now()
	mc.mu.Lock()
	e, ok := mc.entries[key]
	if !ok || e.expired(now) {
		if ok {
			delete(mc.entries, key)
		}
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	e.lastRead = now
	data := e.data
	mc.mu.Unlock()

	return unmarshalValue(data, dest)
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e, ok := mc.entries[key]; ok && !e.expired(now) {
		return false, nil
	}
	mc.entries[key] = &memEntry{data: []byte("locked"), expireAt: now.Add(ttl), lastRead: now}
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.entries, key)
	return nil
}

// Close stops the sweep loop.
func (mc *MemoryCache) Close() error {
	mc.sweep.Stop()
	close(mc.done)
	return nil
}

// evictOldest drops the least recently read entry. Caller holds mu.
func (mc *MemoryCache) evictOldest() {
	var victim string
	var oldest time.Time
	for key, e := range mc.entries {
		if victim == "" || e.lastRead.Before(oldest) {
			victim, oldest = key, e.lastRead
		}
	}
	if victim != "" {
		delete(mc.entries, victim)
	}
}

func (mc *MemoryCache) sweepLoop() {
	for {
		select {
		case <-mc.done:
			return
		case now := <-mc.sweep.C:
			mc.mu.Lock()
			for key, e := range mc.entries {
				if e.expired(now) {
					delete(mc.entries, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}

func marshalValue(value interface{}) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}

func unmarshalValue(data []byte, dest interface{}) error {
	if sp, ok := dest.(*string); ok {
		*sp = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}
