package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Meter  string  `json:"meter"`
	PeakKW float64 `json:"peak_kw"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache(4)
	defer mc.Close()
	ctx := context.Background()

	in := payload{Meter: "main", PeakKW: 512.5}
	if err := mc.Set(ctx, GenerateKey("forecast:hourly", "main"), in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	if err := mc.Get(ctx, "forecast:hourly:main", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Fatalf("round trip: expected %+v, got %+v", in, out)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache(4)
	defer mc.Close()
	ctx := context.Background()

	var out payload
	if err := mc.Get(ctx, "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := mc.Set(ctx, "brief", payload{Meter: "main"}, time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "brief", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyRead(t *testing.T) {
	mc := NewMemoryCache(2)
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("Set b: %v", err)
	}

	// Touch "a" so "b" becomes the eviction victim.
	var s string
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("a should survive eviction: %v", err)
	}
}

func TestMemoryCacheTryLockIsExclusive(t *testing.T) {
	mc := NewMemoryCache(4)
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:forecast:main", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock:forecast:main", time.Minute)
	if err != nil || ok {
		t.Fatalf("second TryLock should lose: ok=%v err=%v", ok, err)
	}

	if err := mc.Unlock(ctx, "lock:forecast:main"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, err = mc.TryLock(ctx, "lock:forecast:main", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after Unlock: ok=%v err=%v", ok, err)
	}
}
