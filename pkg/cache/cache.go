// Package cache stores computed layouts and rendered artifacts.
//
// Two kinds of entries are cached, each under a key built by a [Keyer]:
//
//   - layouts, keyed by graph content hash and layout options
//   - artifacts (SVG, PNG, DOT), keyed by layout hash and render options
//
// Backends:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cache entries.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
