// Package cache stores generated graphs between runs.
//
// Building a large graph under the strict policy is the slowest stage of the
// pipeline, and a request is fully determined by its counts, policy, source
// and seed. The runner therefore keys finished graphs by those inputs and
// reuses them when the same request is made again.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries as files under the user cache directory (CLI default)
//   - [RedisCache]: a shared cache for machines generating the same inputs
//   - [NullCache]: stores nothing (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// reported with ok=false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// TTLGraph is how long a generated graph stays cached.
const TTLGraph = 7 * 24 * time.Hour
