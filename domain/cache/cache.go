// Package cache provides the domain interface for artifact caching.
// The cache is a pure optimization: the pipeline must produce identical
// output with caching disabled, only slower.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching serialized chart artifacts
// under content-derived keys. Implementations may be in-memory, Redis,
// or any other backend, and must be safe under concurrent access.
type Cache interface {
	// Get retrieves a cached value by key.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given key and options.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error

	// Delete removes a cached entry by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error
}

// SetOptions configures how a value is stored in the cache.
type SetOptions struct {
	// TTL bounds the freshness window of the cached artifact.
	// Zero means no expiration.
	TTL time.Duration
}

// Stats provides cache statistics.
type Stats struct {
	// Hits is the number of cache hits.
	Hits int64
	// Misses is the number of cache misses.
	Misses int64
	// Size is the current number of entries.
	Size int64
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int64
}

// StatsProvider is an optional interface for caches that support
// statistics.
type StatsProvider interface {
	// Stats returns current cache statistics.
	Stats() Stats
}
