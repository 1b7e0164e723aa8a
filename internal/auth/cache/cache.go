// Package cache defines the key-value collaborator this subsystem consumes
// and its drivers. The cache is shared and externally owned: other processes
// may write concurrently, so nothing here assumes exclusive access.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports that a key is absent (or expired). Drivers must return it
// for missing keys so callers can distinguish "not found" from an I/O
// failure - conflating the two would make a cache outage look like a
// successful revocation.
var ErrMiss = errors.New("cache: key not found")

// Cache is an async get/set/delete store with per-key TTL. Reads must
// reflect the most recent write from the same process; durability beyond
// that is not required.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key namespaces use redis hash-tag style prefixes so a clustered cache
// colocates related keys.
const (
	csrfNamespace      = "{csrf}:"
	refreshNamespace   = "{refresh}:"
	blacklistNamespace = "{blacklist}:"
)

// CSRFKey is the cache key for an issued CSRF token, keyed by its digest.
func CSRFKey(digest string) string { return csrfNamespace + digest }

// RefreshKey is the cache key for a refresh token record, keyed by jti.
func RefreshKey(jti string) string { return refreshNamespace + jti }

// BlacklistKey is the cache key for a revocation record, keyed by jti.
func BlacklistKey(jti string) string { return blacklistNamespace + jti }
