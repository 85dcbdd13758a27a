// Package window defines the rendering-surface capability the navigator
// drives: a Handle wraps one embeddable document-rendering surface, and a
// Provider creates handles on demand and supplies the dispatcher display
// callbacks must run on.
package window

import (
	"context"
	"fmt"
)

// LoadEnd is emitted when a handle finishes loading a document.
type LoadEnd struct {
	URL string
}

// ConsoleMessage is emitted when script running in the surface writes to its console.
type ConsoleMessage struct {
	Message string
	Source  string
	Line    int
}

// String formats the message the way browser logs are recorded.
func (m ConsoleMessage) String() string {
	return fmt.Sprintf("%s, source %s, line number %d", m.Message, m.Source, m.Line)
}

// Crash is emitted when the process backing a surface dies.
type Crash struct {
	Reason string
}

// ScriptExecutor runs script code inside a surface.
type ScriptExecutor interface {
	ExecuteScript(code string) error
}

// Frame is the main frame of a surface.
type Frame interface {
	ScriptExecutor
}

// Handle is one rendering surface instance.
type Handle interface {
	// ID identifies the handle in logs and traces.
	ID() string
	// NavigateTo starts loading path. Completion is reported through LoadEnd.
	NavigateTo(path string) error
	// URL is the last path the surface was asked to load.
	URL() string
	MainFrame() Frame

	LoadEnd() Source[LoadEnd]
	ConsoleMessage() Source[ConsoleMessage]
	Crashed() Source[Crash]

	// Show makes the surface visible.
	Show()
	// Close disposes the surface. A closed handle must not be reused.
	Close() error
}

// ScriptHooker is implemented by handles that can run a callback before any
// script executes in a freshly loaded document.
type ScriptHooker interface {
	BeforeScriptExecution() Source[ScriptExecutor]
}

// Provider creates and destroys handles. The navigator never constructs a
// Handle itself.
type Provider interface {
	Create(ctx context.Context) (Handle, error)
	DisplayDispatcher() Dispatcher
}
