// Package cachemanager provides a typed TTL cache and a read-through helper.
// The locator uses it to memoize view-model to content path resolution.
package cachemanager

import "time"

// Cache is a typed key/value store with per-entry TTL.
type Cache[K ~string, V any] interface {
	Get(key K) (V, bool)
	// Touch returns the value and restarts its TTL.
	Touch(key K, ttl time.Duration) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(keys ...K)
	Flush()
	Len() int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   uint64
	Misses uint64
}
