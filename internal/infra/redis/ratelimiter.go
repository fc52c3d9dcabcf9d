package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/agribuddy/notify-engine/internal/ratelimit"
)

const keyPrefix = "notify:ratelimit:"

// consumeScript increments the recipient's window counter atomically. The
// key carries an expiry slightly past the window so stale buckets clean
// themselves up.
var consumeScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.Limiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window per-recipient limiter backed by Redis, for
// deployments running more than one engine instance.
type RateLimiter struct {
	client *goredis.Client
	config ratelimit.Config
	now    func() time.Time
	script *goredis.Script
}

func NewRateLimiter(client *goredis.Client, config ratelimit.Config) (*RateLimiter, error) {
	return newRateLimiter(client, config, time.Now)
}

func newRateLimiter(client *goredis.Client, config ratelimit.Config, nowFn func() time.Time) (*RateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	if config.Window <= 0 {
		config.Window = ratelimit.DefaultWindow
	}
	if config.MaxPerWindow <= 0 {
		config.MaxPerWindow = ratelimit.DefaultMaxPerWindow
	}

	return &RateLimiter{
		client: client,
		config: config,
		now:    nowFn,
		script: consumeScript,
	}, nil
}

func (r *RateLimiter) TryConsume(ctx context.Context, key string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalized := strings.TrimSpace(key)
	if normalized == "" {
		return false, fmt.Errorf("rate limit key is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	bucket := r.now().UTC().Unix() / int64(r.config.Window/time.Second)
	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, normalized, bucket)
	expiry := int64(r.config.Window/time.Second) + 60

	result, err := r.script.Run(ctx, r.client, []string{redisKey}, r.config.MaxPerWindow, expiry).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}

func (r *RateLimiter) ResetAll(ctx context.Context) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("rate limiter is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete rate limit key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan rate limit keys: %w", err)
	}

	return nil
}
