package binding

import (
	"sync"

	"github.com/zjrosen/twinview/internal/log"
)

// Holder owns at most one Binding. Installing a new binding closes the
// previous one first. After Shutdown the holder stays empty: any binding
// handed to Set is closed immediately.
type Holder struct {
	mu       sync.Mutex
	current  Binding
	shutdown bool
}

// Get returns the current binding, or nil.
func (h *Holder) Get() Binding {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Set replaces the current binding, closing the previous one.
func (h *Holder) Set(b Binding) {
	closeBinding(h.Swap(b))
}

// Swap installs b and returns the binding it replaced without closing it.
// After Shutdown the holder stays empty and b itself is returned, so the
// caller always owns exactly one binding to close.
func (h *Holder) Swap(b Binding) Binding {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		if b != nil {
			log.Debug(log.CatBinding, "binding installed after shutdown, closing")
		}
		return b
	}
	prev := h.current
	h.current = b
	return prev
}

// Clear closes and drops the current binding.
func (h *Holder) Clear() {
	h.Set(nil)
}

// Shutdown clears the holder and makes every later Set a teardown.
// Safe to call more than once.
func (h *Holder) Shutdown() {
	h.mu.Lock()
	h.shutdown = true
	prev := h.current
	h.current = nil
	h.mu.Unlock()

	closeBinding(prev)
}

func closeBinding(b Binding) {
	if b == nil {
		return
	}
	if err := b.Close(); err != nil {
		log.ErrorErr(log.CatBinding, "closing binding", err)
	}
}
