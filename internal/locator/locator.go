// Package locator resolves a view-model (plus an optional identifier) to the
// content path that renders it.
package locator

import (
	"reflect"
	"sync"
)

// Locator resolves view-models to content paths.
type Locator interface {
	// Solve returns the content path for vm, or false if vm is not registered.
	Solve(vm any, id string) (string, bool)
}

// Func adapts a function to Locator.
type Func func(vm any, id string) (string, bool)

// Solve implements Locator.
func (f Func) Solve(vm any, id string) (string, bool) { return f(vm, id) }

// Named is implemented by view-models that choose their registry name.
type Named interface {
	ViewName() string
}

// NameOf returns the registry name of vm: its ViewName when it implements
// Named, otherwise its type name with pointers dereferenced.
func NameOf(vm any) string {
	if vm == nil {
		return ""
	}
	if n, ok := vm.(Named); ok {
		return n.ViewName()
	}
	t := reflect.TypeOf(vm)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Entry maps a view name and optional id to a content path.
type Entry struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id,omitempty"`
	Path string `yaml:"path"`
}

type key struct {
	name string
	id   string
}

// Registry is an in-memory Locator keyed by view name and id.
// A lookup with an id falls back to the entry registered without one.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]string
}

// NewRegistry creates a registry holding entries.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[key]string)}
	for _, e := range entries {
		r.entries[key{e.Name, e.ID}] = e.Path
	}
	return r
}

// Register adds or replaces one mapping.
func (r *Registry) Register(name, id, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key{name, id}] = path
}

// Replace swaps the whole mapping table atomically.
func (r *Registry) Replace(entries []Entry) {
	next := make(map[key]string, len(entries))
	for _, e := range entries {
		next[key{e.Name, e.ID}] = e.Path
	}
	r.mu.Lock()
	r.entries = next
	r.mu.Unlock()
}

// Len returns the number of mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Solve implements Locator.
func (r *Registry) Solve(vm any, id string) (string, bool) {
	name := NameOf(vm)
	if name == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if path, ok := r.entries[key{name, id}]; ok && path != "" {
		return path, true
	}
	if id != "" {
		if path, ok := r.entries[key{name, ""}]; ok && path != "" {
			return path, true
		}
	}
	return "", false
}
