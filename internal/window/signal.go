package window

import (
	"sync"
)

// Source is the subscription side of a Signal.
type Source[T any] interface {
	// Subscribe registers fn for every emission until the subscription is cancelled.
	Subscribe(fn func(T)) *Subscription
	// Once registers fn for the next emission only. The signal drops the
	// registration itself before invoking fn.
	Once(fn func(T)) *Subscription
}

// Subscription is a registration token returned by Source methods.
// A nil Subscription is valid and Unsubscribe on it is a no-op.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the registration. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

type handler[T any] struct {
	id   uint64
	fn   func(T)
	once bool
}

// Signal is a thread-safe multicast notification. Handlers run on the
// emitting goroutine, in registration order, outside the signal's lock, so a
// handler may subscribe or unsubscribe without deadlocking.
type Signal[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []handler[T]
}

// NewSignal creates an empty signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Subscribe implements Source.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	return s.add(fn, false)
}

// Once implements Source.
func (s *Signal[T]) Once(fn func(T)) *Subscription {
	return s.add(fn, true)
}

func (s *Signal[T]) add(fn func(T), once bool) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, handler[T]{id: id, fn: fn, once: once})
	return &Subscription{cancel: func() { s.remove(id) }}
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.handlers {
		if h.id == id {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Emit invokes every registered handler with v. One-shot handlers are
// removed before any handler runs.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	snapshot := make([]handler[T], len(s.handlers))
	copy(snapshot, s.handlers)
	kept := s.handlers[:0:0]
	for _, h := range s.handlers {
		if !h.once {
			kept = append(kept, h)
		}
	}
	s.handlers = kept
	s.mu.Unlock()

	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of live registrations.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
