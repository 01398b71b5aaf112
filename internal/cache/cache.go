package cache

import (
	"context"
	"time"
)

// Store is a key-value store with per-key expiration, shared process-wide.
// It serves both as memoization (follower lists) and as a dedup guard
// (like-suppression markers).
type Store interface {
	// Get returns the value and whether the key was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetIfAbsent atomically sets the key only when it does not exist.
	// It returns true when this caller won the write.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
