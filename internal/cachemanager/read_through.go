package cachemanager

import "time"

// ReadThrough serves values from a Cache and loads them on a miss.
// Failed loads are not stored. A ttl <= 0 bypasses the cache entirely.
type ReadThrough[K ~string, V any] struct {
	cache Cache[K, V]
	ttl   time.Duration
}

func NewReadThrough[K ~string, V any](cache Cache[K, V], ttl time.Duration) *ReadThrough[K, V] {
	return &ReadThrough[K, V]{cache: cache, ttl: ttl}
}

// Get returns the cached value for key, restarting its TTL, or calls load
// and caches what it returns.
func (r *ReadThrough[K, V]) Get(key K, load func() (V, error)) (V, error) {
	if r.ttl <= 0 {
		return load()
	}
	if v, ok := r.cache.Touch(key, r.ttl); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	r.cache.Set(key, v, r.ttl)
	return v, nil
}

// Invalidate drops every cached value.
func (r *ReadThrough[K, V]) Invalidate() {
	r.cache.Flush()
}
