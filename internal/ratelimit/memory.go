package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

var _ Limiter = (*MemoryLimiter)(nil)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window limiter. Each recipient key
// gets a counter that resets when its window expires. Suitable for a
// single instance; use the Redis limiter when running more than one.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]windowEntry
	config  Config
	now     func() time.Time
}

func NewMemoryLimiter(config Config) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]windowEntry),
		config:  config.withDefaults(),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) TryConsume(_ context.Context, key string) (bool, error) {
	if m == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalized := strings.TrimSpace(key)
	if normalized == "" {
		return false, fmt.Errorf("rate limit key is required")
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[normalized]
	if !ok || now.After(entry.resetAt) {
		entry = windowEntry{count: 0, resetAt: now.Add(m.config.Window)}
	}

	if entry.count >= m.config.MaxPerWindow {
		m.entries[normalized] = entry
		return false, nil
	}

	entry.count++
	m.entries[normalized] = entry
	return true, nil
}

func (m *MemoryLimiter) ResetAll(_ context.Context) error {
	if m == nil {
		return fmt.Errorf("rate limiter is not initialized")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]windowEntry)
	return nil
}
