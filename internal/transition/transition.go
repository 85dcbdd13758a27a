// Package transition tracks the visual open/close lifecycle of a view,
// independently of whether the underlying surface has finished loading.
package transition

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/twinview/internal/log"
)

// State is the visual lifecycle state of a Wrapper.
type State int

const (
	StateCreated State = iota
	StateOpened
	StateClosePending
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpened:
		return "opened"
	case StateClosePending:
		return "close_pending"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Animator runs the open and close animations of a view.
// Implementations block until the animation finishes or ctx is done.
type Animator interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
}

// Wrapper is a single-use transition. Open and close each run at most once;
// repeated calls return the same completion channel.
type Wrapper struct {
	id       string
	animator Animator

	mu    sync.Mutex
	state State

	openOnce  sync.Once
	openDone  chan struct{}
	closeOnce sync.Once
	closeDone chan struct{}
}

// New creates a wrapper in StateCreated. A nil animator completes instantly.
func New(animator Animator) *Wrapper {
	if animator == nil {
		animator = NoAnimation{}
	}
	return &Wrapper{
		id:        uuid.NewString(),
		animator:  animator,
		state:     StateCreated,
		openDone:  make(chan struct{}),
		closeDone: make(chan struct{}),
	}
}

// ID identifies the wrapper in logs and traces.
func (w *Wrapper) ID() string { return w.id }

// State returns the current state.
func (w *Wrapper) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// MarkOpened records that the wrapped view is now the visible one.
// It does not run the open animation.
func (w *Wrapper) MarkOpened() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateCreated {
		w.state = StateOpened
	}
}

// Open starts the open animation and returns a channel closed when it ends.
func (w *Wrapper) Open(ctx context.Context) <-chan struct{} {
	w.openOnce.Do(func() {
		go func() {
			defer close(w.openDone)
			if err := w.animator.Open(ctx); err != nil {
				log.Debug(log.CatNav, "open animation interrupted", "transition", w.id, "error", err)
			}
		}()
	})
	return w.openDone
}

// Close starts the close animation and returns a channel closed once the
// wrapper reaches StateClosed.
func (w *Wrapper) Close(ctx context.Context) <-chan struct{} {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.state = StateClosePending
		w.mu.Unlock()

		go func() {
			defer close(w.closeDone)
			if err := w.animator.Close(ctx); err != nil {
				log.Debug(log.CatNav, "close animation interrupted", "transition", w.id, "error", err)
			}
			w.mu.Lock()
			w.state = StateClosed
			w.mu.Unlock()
		}()
	})
	return w.closeDone
}

// Closed returns a channel that is already closed. It stands in for the
// close of a transition that does not exist.
func Closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// NoAnimation completes both animations immediately.
type NoAnimation struct{}

func (NoAnimation) Open(context.Context) error  { return nil }
func (NoAnimation) Close(context.Context) error { return nil }

// Delay is an Animator that waits a fixed duration for each animation.
type Delay struct {
	OpenFor  time.Duration
	CloseFor time.Duration
}

// Open waits OpenFor.
func (d Delay) Open(ctx context.Context) error { return wait(ctx, d.OpenFor) }

// Close waits CloseFor.
func (d Delay) Close(ctx context.Context) error { return wait(ctx, d.CloseFor) }

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
