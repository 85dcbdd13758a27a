package navigation

import (
	"errors"
	"fmt"

	"github.com/zjrosen/twinview/internal/locator"
)

// ErrDisposed is returned to callers whose transition was interrupted by Close.
var ErrDisposed = errors.New("navigator disposed")

// errNoActiveWindow is reported when a script is run before the first swap.
var errNoActiveWindow = errors.New("no active window")

// UnresolvedViewError reports a view-model the locator cannot map to a path.
type UnresolvedViewError struct {
	ViewModel any
	ID        string
}

func (e *UnresolvedViewError) Error() string {
	name := locator.NameOf(e.ViewModel)
	if e.ID != "" {
		return fmt.Sprintf("unable to locate view for %s (id %q)", name, e.ID)
	}
	return fmt.Sprintf("unable to locate view for %s", name)
}
