package window

import (
	"sync"
)

// Dispatcher schedules callbacks on a specific thread or loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks on the calling goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// LoopDispatcher runs callbacks one at a time, in submission order, on a
// single goroutine.
type LoopDispatcher struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	closed  bool
}

// NewLoopDispatcher starts the loop goroutine. Call Close to stop it.
func NewLoopDispatcher() *LoopDispatcher {
	d := &LoopDispatcher{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go d.loop()
	return d
}

// Dispatch queues fn. Callbacks queued after Close are dropped.
func (d *LoopDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Close stops the loop after draining callbacks already queued.
func (d *LoopDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stopped
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	<-d.stopped
}

func (d *LoopDispatcher) loop() {
	defer close(d.stopped)
	for {
		d.drain()
		select {
		case <-d.wake:
		case <-d.done:
			d.drain()
			return
		}
	}
}

func (d *LoopDispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		fn()
	}
}
