package cachemanager

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/twinview/internal/log"
)

const minCleanupInterval = time.Minute

// Memory is a go-cache backed Cache. The name tags its log lines.
type Memory[K ~string, V any] struct {
	name   string
	items  *gocache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ Cache[string, int] = (*Memory[string, int])(nil)

// NewMemory creates a cache whose entries default to ttl. Expired entries
// are swept every 2*ttl, but at most once a minute.
func NewMemory[K ~string, V any](name string, ttl time.Duration) *Memory[K, V] {
	items := gocache.New(ttl, max(2*ttl, minCleanupInterval))
	items.OnEvicted(func(key string, _ any) {
		log.Debug(log.CatLocator, "cache entry evicted", "cache", name, "key", key)
	})
	return &Memory[K, V]{name: name, items: items}
}

func (m *Memory[K, V]) Get(key K) (V, bool) {
	var zero V
	raw, found := m.items.Get(string(key))
	if !found {
		m.misses.Add(1)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		m.misses.Add(1)
		log.Error(log.CatLocator, "cache entry has unexpected type", "cache", m.name, "key", key)
		return zero, false
	}
	m.hits.Add(1)
	return v, true
}

func (m *Memory[K, V]) Touch(key K, ttl time.Duration) (V, bool) {
	v, ok := m.Get(key)
	if ok {
		m.items.Set(string(key), v, ttl)
	}
	return v, ok
}

func (m *Memory[K, V]) Set(key K, value V, ttl time.Duration) {
	m.items.Set(string(key), value, ttl)
}

func (m *Memory[K, V]) Delete(keys ...K) {
	for _, k := range keys {
		m.items.Delete(string(k))
	}
}

func (m *Memory[K, V]) Flush() {
	m.items.Flush()
	log.Debug(log.CatLocator, "cache flushed", "cache", m.name)
}

// Len counts entries, including expired ones not yet swept.
func (m *Memory[K, V]) Len() int { return m.items.ItemCount() }

// Stats returns hit and miss counts.
func (m *Memory[K, V]) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
}
