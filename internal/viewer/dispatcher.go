package viewer

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/twinview/internal/window"
)

// dispatchMsg carries a display callback into the update loop.
type dispatchMsg struct{ fn func() }

// Dispatcher is a window.Dispatcher that runs callbacks on the Bubble Tea
// update loop, making the program's goroutine the display thread.
type Dispatcher struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

var _ window.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. The model drains it via Next.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		queue: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// Dispatch queues fn for the update loop. Dropped after Stop.
func (d *Dispatcher) Dispatch(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.done:
	}
}

// Next returns a command that waits for the next queued callback.
func (d *Dispatcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-d.queue:
			return dispatchMsg{fn: fn}
		case <-d.done:
			return nil
		}
	}
}

// Stop releases pending Dispatch calls and ends Next.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.done) })
}
