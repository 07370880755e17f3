package statestore

import "time"

// MemoryOption configures the in-memory state store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxPending      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:      10 * time.Minute,
		cleanupInterval: time.Minute,
		maxPending:      0, // 0 = unlimited
	}
}

// WithDefaultTTL sets the expiration applied when Issue is called with a
// non-positive TTL.
// Default: 10 minutes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often expired tokens are removed by the
// background janitor goroutine.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxPending caps the number of pending tokens. When the cap is
// reached, the oldest pending token is dropped. Issue requests originate
// from unauthenticated clients, so an uncapped store is a memory-exhaustion
// vector on public deployments.
// Zero means unlimited.
// Default: 0 (unlimited).
func WithMaxPending(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxPending = n
	}
}
