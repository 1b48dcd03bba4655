// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several machines rendering
//     the same flows
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are derived from content hashes by a [Keyer]. A layout key covers the
// document hash and the Graphviz options; an artifact key covers the scene
// hash and the output format. Changing any input changes the key, so entries
// never need invalidation beyond their TTL.
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(sceneJSON), cache.ArtifactKeyOpts{Format: "svg"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default TTLs.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// GetJSON decodes the entry at key into v. It returns [ErrCacheMiss] when the
// key is absent or the entry no longer decodes.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
