// Package cache provides the caching layer for parsed diagrams and generated
// views.
//
// # Backends
//
//   - [FileCache] stores entries as files under a directory. It is the
//     default for the CLI.
//   - [RedisCache] shares entries between machines through Redis.
//   - [NullCache] disables caching.
//
// All backends implement [Cache]. Entries are opaque byte slices; callers
// decide the encoding (the pipeline stores parsed trees as msgpack and views
// as generated text).
//
// # Keys
//
// A [Keyer] derives keys from content hashes so identical inputs share
// entries and any change to the source, the lens or the output format yields
// a new key. Wrap a keyer with [NewScopedKeyer] to isolate namespaces, for
// example per build version.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLAST  = 7 * 24 * time.Hour
	TTLView = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
