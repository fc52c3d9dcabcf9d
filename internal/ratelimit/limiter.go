// Package ratelimit caps how many notifications a single recipient can
// receive within a fixed window.
package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultWindow is the fixed-window length for per-recipient limits.
	DefaultWindow = time.Hour

	// DefaultMaxPerWindow is the number of sends allowed per recipient
	// per window.
	DefaultMaxPerWindow = 10
)

// Limiter gates sends per recipient key. TryConsume atomically checks the
// recipient's counter for the current window and consumes one slot when
// under the limit; the consumed slot is not returned on send failure.
type Limiter interface {
	TryConsume(ctx context.Context, key string) (bool, error)
	ResetAll(ctx context.Context) error
}

// Config carries the window parameters shared by all Limiter
// implementations. Zero values fall back to the defaults.
type Config struct {
	Window       time.Duration
	MaxPerWindow int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxPerWindow <= 0 {
		c.MaxPerWindow = DefaultMaxPerWindow
	}
	return c
}
