// Package cache stores responses from the text extraction service and
// provides the retry helpers used for storage writes.
//
// # Backends
//
//   - [FileCache]: files under the user cache directory, for the CLI
//   - [RedisCache]: shared cache for API servers
//   - [NullCache]: disables caching
//
// Keys are built by a [Keyer] so that equivalent requests map to the same
// entry and every key is namespaced by kind ("extract", "bio").
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the cached value. A miss is (nil, false, nil); errors are
	// reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values for cached entries.
const (
	ExtractTTL = 30 * 24 * time.Hour
	BioTTL     = 7 * 24 * time.Hour
)

// NullCache never stores anything. It is used with --no-cache and when
// caching is configured off.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error     { return nil }
func (NullCache) Delete(context.Context, string) error                         { return nil }
func (NullCache) Close() error                                                 { return nil }

var _ Cache = NullCache{}
