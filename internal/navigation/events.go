package navigation

import (
	"github.com/zjrosen/twinview/internal/pubsub"
)

// Event types published on the navigator's broker.
const (
	// EventNavigated follows every swap. NewViewModel and OldViewModel are set.
	EventNavigated pubsub.EventType = "navigated"
	// EventDisplayed follows the open animation of a swapped-in view. ViewModel is set.
	EventDisplayed pubsub.EventType = "displayed"
	// EventFirstLoad fires once per navigator, before the first EventNavigated.
	EventFirstLoad pubsub.EventType = "first_load"
	// EventRecovered follows the EventNavigated of a transition started by a crash.
	EventRecovered pubsub.EventType = "recovered"
)

// Event is the payload of every navigator event.
type Event struct {
	NewViewModel any
	OldViewModel any
	ViewModel    any

	Path         string
	TransitionID string
}

// Navigable is implemented by view-models that keep a reference to the
// navigator showing them. SetNavigator(nil) clears the reference.
type Navigable interface {
	SetNavigator(n *Navigator)
}
