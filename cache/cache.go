// Package cache provides the shared in-memory TTL store used by the API
// caching decorators, with one expiry tier per lookup shape.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Expiry tiers. Search results are query-shaped and volatile; entity details
// change rarely; derived lookups (ingredients, classes, interaction lists)
// are the most expensive and the most stable.
const (
	SearchTTL  = 24 * time.Hour
	DetailTTL  = 7 * 24 * time.Hour
	DerivedTTL = 30 * 24 * time.Hour
)

// Store is a thread-safe key→value cache with per-entry absolute expiry.
// Concurrent misses for one key may both fill it; upstream GETs are
// idempotent so the duplicate call is harmless.
type Store struct {
	inner *gocache.Cache
}

// New creates a Store. Expired entries are swept every 10 minutes.
func New() *Store {
	return &Store{inner: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Get returns the cached value for key, if present and unexpired.
func (s *Store) Get(key string) (any, bool) {
	return s.inner.Get(key)
}

// Set stores value under key for ttl.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.inner.Set(key, value, ttl)
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.inner.Flush()
}

// ItemCount returns the number of entries, expired ones included.
func (s *Store) ItemCount() int {
	return s.inner.ItemCount()
}

// Key joins an operation name and its normalized parameters into a cache
// key. Parameters are lowercased and trimmed so "Aspirin" and "aspirin "
// share an entry.
func Key(operation string, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, operation)
	for _, p := range params {
		parts = append(parts, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(parts, ":")
}
