// Package cache stores repository responses between runs.
//
// Search queries against the repository index are slow and rate limited,
// so their decoded results are kept in a [Cache] keyed by query. Three
// backends are provided:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared cache for build machines behind the same Redis
//   - [NullCache]: stores nothing, used with --no-cache
//
// Downloaded artifacts are not stored here; the local repository directory
// is their durable memo.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
