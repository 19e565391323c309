package ratelimit

import (
	"context"
	"testing"
	"time"
)

func allow(t *testing.T, tb *TokenBucket, key string) bool {
	t.Helper()
	ok, err := tb.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	return ok
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := NewTokenBucket(1, 3) // rate=1/s, capacity=3
	t.Cleanup(func() { tb.Close() })

	for i := 0; i < 3; i++ {
		if !allow(t, tb, "test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}

	if allow(t, tb, "test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	t.Cleanup(func() { tb.Close() })

	if !allow(t, tb, "ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if allow(t, tb, "ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !allow(t, tb, "ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb := NewTokenBucket(0, 2)
	t.Cleanup(func() { tb.Close() })

	if !allow(t, tb, "k") || !allow(t, tb, "k") {
		t.Fatal("first two requests should be allowed")
	}
	if allow(t, tb, "k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	t.Cleanup(func() { tb.Close() })

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return now }

	if !allow(t, tb, "k") {
		t.Fatal("first request should be allowed")
	}
	if allow(t, tb, "k") {
		t.Fatal("second request should be denied")
	}
	now = now.Add(1500 * time.Millisecond)
	if !allow(t, tb, "k") {
		t.Fatal("request after refill should be allowed")
	}
}

func TestTokenBucket_EvictStale(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	t.Cleanup(func() { tb.Close() })

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return now }

	allow(t, tb, "old")
	now = now.Add(staleAfter + time.Second)
	allow(t, tb, "fresh")
	tb.evictStale()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.buckets["old"]; ok {
		t.Fatal("expected stale bucket to be evicted")
	}
	if _, ok := tb.buckets["fresh"]; !ok {
		t.Fatal("expected fresh bucket to remain")
	}
}

func TestTokenBucket_CloseIdempotent(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	if err := tb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tb.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
