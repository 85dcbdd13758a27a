package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

type subscription[T any] struct {
	ch   chan Event[T]
	done <-chan struct{}
}

// Broker fans events out to every subscriber. Each subscriber sees events
// in publish order.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscription[T]]struct{}
	closed  chan struct{}
	buffer  int
	dropped atomic.Uint64
}

// NewBroker creates a broker whose subscriber channels hold 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with the given subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:   make(map[*subscription[T]]struct{}),
		closed: make(chan struct{}),
		buffer: size,
	}
}

// Subscribe returns a channel that receives every event published from now
// on. It is closed when ctx ends or the broker closes.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{ch: make(chan Event[T], b.buffer), done: ctx.Done()}
	b.subs[sub] = struct{}{}
	go b.reap(sub)
	return sub.ch
}

// reap removes sub once its context ends.
func (b *Broker[T]) reap(sub *subscription[T]) {
	select {
	case <-sub.done:
	case <-b.closed:
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isClosed() {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers without blocking. A subscriber whose buffer is full
// misses the event, which is counted in Dropped.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isClosed() {
		return
	}

	event := newEvent(eventType, payload)
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// PublishWait delivers to every subscriber, waiting for buffer room.
// Subscribers whose context has ended are skipped. If ctx ends first the
// remaining subscribers are not delivered to and ctx.Err() is returned.
func (b *Broker[T]) PublishWait(ctx context.Context, eventType EventType, payload T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isClosed() {
		return nil
	}

	event := newEvent(eventType, payload)
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isClosed() {
		return
	}
	close(b.closed)
	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries Publish skipped on full buffers.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broker[T]) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

func newEvent[T any](eventType EventType, payload T) Event[T] {
	return Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
}
