// Package pubsub provides a generic publish/subscribe event system.
// It backs the navigator's outbound events and the live log feed.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened. Each publisher declares its own set.
type EventType string

// Event is one published value with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber is anything that hands out ctx-scoped event channels, such as
// a Broker or the navigator.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
