package locator

import (
	"errors"
	"time"

	"github.com/zjrosen/twinview/internal/cachemanager"
	"github.com/zjrosen/twinview/internal/log"
)

var errNotRegistered = errors.New("view not registered")

// Cached memoizes successful resolutions of an inner Locator for ttl.
// Misses are not cached, so a view registered later resolves immediately.
type Cached struct {
	inner  Locator
	memory *cachemanager.Memory[string, string]
	paths  *cachemanager.ReadThrough[string, string]
}

// NewCached wraps inner. A ttl <= 0 disables caching.
func NewCached(inner Locator, ttl time.Duration) *Cached {
	memory := cachemanager.NewMemory[string, string]("view-paths", ttl)
	return &Cached{
		inner:  inner,
		memory: memory,
		paths:  cachemanager.NewReadThrough[string, string](memory, ttl),
	}
}

// Solve implements Locator.
func (c *Cached) Solve(vm any, id string) (string, bool) {
	name := NameOf(vm)
	if name == "" {
		return "", false
	}
	path, err := c.paths.Get(name+"\x00"+id, func() (string, error) {
		path, ok := c.inner.Solve(vm, id)
		if !ok {
			return "", errNotRegistered
		}
		return path, nil
	})
	return path, err == nil
}

// Stats reports cache hits and misses.
func (c *Cached) Stats() cachemanager.Stats {
	return c.memory.Stats()
}

// Invalidate drops every cached resolution.
func (c *Cached) Invalidate() {
	stats := c.memory.Stats()
	c.paths.Invalidate()
	log.Debug(log.CatLocator, "view paths invalidated", "hits", stats.Hits, "misses", stats.Misses)
}
