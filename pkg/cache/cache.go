// Package cache stores computed layouts between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory, used by
//     the CLI.
//   - [RedisCache]: a shared Redis instance, used when several API servers
//     sit behind a load balancer.
//   - [NullCache]: stores nothing; caching disabled.
//
// # Keys
//
// A [Keyer] derives keys from the SHA-256 of the canonical input document and
// every layout option that affects the result, so changing any of them is a
// miss. [ScopedKeyer] adds a prefix to isolate namespaces on a shared
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// A miss is (nil, false, nil); errors are reserved for backend failures.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLLayout is the default lifetime of a cached layout. Layouts are pure
// functions of their key, so the TTL only bounds disk and memory use.
const TTLLayout = 7 * 24 * time.Hour
