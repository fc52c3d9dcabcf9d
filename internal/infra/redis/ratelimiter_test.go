package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agribuddy/notify-engine/internal/ratelimit"
)

func TestRateLimiterTryConsume(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_775_000_000, 0)
	limiter, err := newRateLimiter(
		rdb,
		ratelimit.Config{Window: time.Hour, MaxPerWindow: 2},
		func() time.Time { return now },
	)
	if err != nil {
		t.Fatalf("newRateLimiter() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		allowed, err := limiter.TryConsume(context.Background(), "+256700123456")
		if err != nil {
			t.Fatalf("TryConsume() error = %v", err)
		}
		if !allowed {
			t.Fatalf("TryConsume() call %d = false, want true", i+1)
		}
	}

	allowed, err := limiter.TryConsume(context.Background(), "+256700123456")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if allowed {
		t.Fatal("third consume should be rejected")
	}

	now = now.Add(time.Hour)
	allowed, err = limiter.TryConsume(context.Background(), "+256700123456")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if !allowed {
		t.Fatal("new window should allow consume")
	}
}

func TestRateLimiterTryConsumePerKey(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_775_000_100, 0)
	limiter, err := newRateLimiter(
		rdb,
		ratelimit.Config{Window: time.Hour, MaxPerWindow: 1},
		func() time.Time { return now },
	)
	if err != nil {
		t.Fatalf("newRateLimiter() error = %v", err)
	}

	allowed, err := limiter.TryConsume(context.Background(), "farmer@example.com")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if !allowed {
		t.Fatal("first key should be allowed")
	}

	allowed, err = limiter.TryConsume(context.Background(), "other@example.com")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if !allowed {
		t.Fatal("second key should have its own window")
	}

	allowed, err = limiter.TryConsume(context.Background(), "farmer@example.com")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if allowed {
		t.Fatal("first key second consume should be rejected")
	}
}

func TestRateLimiterResetAll(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_775_000_200, 0)
	limiter, err := newRateLimiter(
		rdb,
		ratelimit.Config{Window: time.Hour, MaxPerWindow: 1},
		func() time.Time { return now },
	)
	if err != nil {
		t.Fatalf("newRateLimiter() error = %v", err)
	}

	if allowed, _ := limiter.TryConsume(context.Background(), "+256700123456"); !allowed {
		t.Fatal("first consume should be allowed")
	}

	if err := limiter.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	allowed, err := limiter.TryConsume(context.Background(), "+256700123456")
	if err != nil {
		t.Fatalf("TryConsume() error = %v", err)
	}
	if !allowed {
		t.Fatal("consume after reset should be allowed")
	}
}

func TestRateLimiterEmptyKey(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	limiter, err := NewRateLimiter(rdb, ratelimit.Config{})
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}

	if _, err := limiter.TryConsume(context.Background(), "  "); err == nil {
		t.Error("TryConsume() with blank key should fail")
	}
}

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}
