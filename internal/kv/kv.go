// Package kv defines the key-value persistence boundary for lettuce.
//
// The store offers plain get/put with per-key TTLs and last-writer-wins
// semantics. There are no transactions or compare-and-swap; callers that
// need read-modify-write do a load, merge, and put, and accept the race
// window (approximate counters and single-user conversation state
// tolerate it).
package kv

import (
	"context"
	"time"
)

// Store is the persistence contract. A zero TTL means no expiry.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key is absent or expired; that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value. A
	// positive ttl expires the key after that duration.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
