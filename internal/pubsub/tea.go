package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a command that yields the next event on ch as a
// tea.Msg, or nil once ctx is done or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// Listener holds one subscription for a Bubble Tea model. Call Listen
// again from Update after each event to keep receiving.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to src for the lifetime of ctx.
func NewListener[T any](ctx context.Context, src Subscriber[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: src.Subscribe(ctx)}
}

// Listen waits for the next event.
func (l *Listener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
