// Package headless simulates the rendering surface, binding engine and
// session injector so a navigator can run without a real browser.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/window"
)

// ErrClosed is returned by operations on a closed window.
var ErrClosed = errors.New("window closed")

// Window is a simulated rendering surface.
type Window struct {
	id string

	loadEnd      *window.Signal[window.LoadEnd]
	console      *window.Signal[window.ConsoleMessage]
	crashed      *window.Signal[window.Crash]
	beforeScript *window.Signal[window.ScriptExecutor]

	scriptFn  func(code string) error
	navigated func(w *Window)

	mu       sync.Mutex
	url      string
	visible  bool
	closed   bool
	crashes  int
	loads    int
	scripts  []string
	closeErr error
}

var (
	_ window.Handle       = (*Window)(nil)
	_ window.ScriptHooker = (*Window)(nil)
	_ window.Frame        = (*Window)(nil)
)

func newWindow(scriptFn func(string) error) *Window {
	return &Window{
		id:           uuid.NewString(),
		loadEnd:      window.NewSignal[window.LoadEnd](),
		console:      window.NewSignal[window.ConsoleMessage](),
		crashed:      window.NewSignal[window.Crash](),
		beforeScript: window.NewSignal[window.ScriptExecutor](),
		scriptFn:     scriptFn,
	}
}

func (w *Window) ID() string { return w.id }

// NavigateTo records path. The owning Provider decides when the load ends.
func (w *Window) NavigateTo(path string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.url = path
	w.mu.Unlock()

	if w.navigated != nil {
		w.navigated(w)
	}
	return nil
}

func (w *Window) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *Window) MainFrame() window.Frame { return w }

func (w *Window) LoadEnd() window.Source[window.LoadEnd]               { return w.loadEnd }
func (w *Window) ConsoleMessage() window.Source[window.ConsoleMessage] { return w.console }
func (w *Window) Crashed() window.Source[window.Crash]                 { return w.crashed }

func (w *Window) BeforeScriptExecution() window.Source[window.ScriptExecutor] {
	return w.beforeScript
}

func (w *Window) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
}

// Close disposes the window. Closing twice is an error.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("window %s: %w", w.id, ErrClosed)
	}
	w.closed = true
	w.visible = false
	return w.closeErr
}

// ExecuteScript records code and runs the provider's script hook.
func (w *Window) ExecuteScript(code string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.scripts = append(w.scripts, code)
	w.mu.Unlock()

	if w.scriptFn != nil {
		return w.scriptFn(code)
	}
	return nil
}

// CompleteLoad finishes loading the current path: the pre-script hooks run
// first, then the load-end handlers.
func (w *Window) CompleteLoad() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.loads++
	url := w.url
	w.mu.Unlock()

	w.beforeScript.Emit(w)
	w.loadEnd.Emit(window.LoadEnd{URL: url})
}

// Log emits a console message as if the page had written it.
func (w *Window) Log(msg, source string, line int) {
	w.console.Emit(window.ConsoleMessage{Message: msg, Source: source, Line: line})
}

// Crash simulates the death of the surface's process.
func (w *Window) Crash(reason string) {
	w.mu.Lock()
	w.crashes++
	w.mu.Unlock()

	log.Debug(log.CatWindow, "simulated crash", "window", w.id, "reason", reason)
	w.crashed.Emit(window.Crash{Reason: reason})
}

// FailClose makes the next Close return err after disposing.
func (w *Window) FailClose(err error) {
	w.mu.Lock()
	w.closeErr = err
	w.mu.Unlock()
}

func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Loads counts completed loads.
func (w *Window) Loads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loads
}

// Scripts returns every script executed in the window, in order.
func (w *Window) Scripts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.scripts...)
}

// Subscribers reports live registrations per signal, for leak checks.
func (w *Window) Subscribers() (loadEnd, console, crashed, beforeScript int) {
	return w.loadEnd.Len(), w.console.Len(), w.crashed.Len(), w.beforeScript.Len()
}
