// Package cache stores computed layouts and rendered artifacts.
//
// Entries are opaque byte slices addressed by string keys. A [Keyer] derives
// those keys from content hashes and the options that influence the result,
// so identical inputs map to the same entry no matter which process
// produced it.
//
// # Backends
//
//   - [NullCache]: stores nothing; used with --no-cache and in tests.
//   - [FileCache]: one JSON file per entry under a directory; the CLI default
//     (~/.cache/stacktree).
//   - [RedisCache]: shared cache for multi-instance render servers.
//   - [MongoCache]: document-store cache with a TTL index.
//
// [Open] picks a backend from a location string such as
// "redis://localhost:6379/0" or "mongodb://localhost:27017".
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend could
// not answer. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Default entry lifetimes.
const (
	// TTLLayout is how long a computed layout stays cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)
