// Package cache stores computed layouts, discretisations and rendered
// artifacts so repeated requests skip the engine.
//
// Four backends implement [Cache]:
//   - [FileCache]: one file per entry, for the CLI
//   - [MemoryCache]: bounded in-process store, for a single API instance
//   - [RedisCache]: shared storage for multi-instance API deployments
//   - [NullCache]: stores nothing, for tests or --no-cache
//
// Keys come from a [Keyer], which hashes the input graph together with every
// option that influences the result, so changing an option never returns a
// stale entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Default entry lifetimes.
const (
	// LayoutTTL is how long layout and discretisation results stay cached.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL is how long rendered artifacts stay cached.
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry expiration.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash returns the hex SHA-256 of data. Graph and layout hashes feed the
// Keyer with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var (
	_ Cache = NullCache{}
	_ Cache = (*FileCache)(nil)
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
