// Package diagnostics receives the critical and browser-console messages a
// navigation session emits, and optionally persists them.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/zjrosen/twinview/internal/log"
)

// Watcher receives session diagnostics.
type Watcher interface {
	// LogCritical reports a failure of the session itself, such as a crash.
	LogCritical(msg string)
	// LogBrowser reports output coming from the rendered content.
	LogBrowser(msg string)
}

// NullWatcher discards everything.
type NullWatcher struct{}

func (NullWatcher) LogCritical(string) {}
func (NullWatcher) LogBrowser(string)  {}

// LogWatcher writes diagnostics to the application log.
type LogWatcher struct{}

func (LogWatcher) LogCritical(msg string) { log.Error(log.CatDiag, msg) }
func (LogWatcher) LogBrowser(msg string)  { log.Info(log.CatBrowser, msg) }

// Multi fans every message out to each watcher in order.
type Multi []Watcher

func (m Multi) LogCritical(msg string) {
	for _, w := range m {
		w.LogCritical(msg)
	}
}

func (m Multi) LogBrowser(msg string) {
	for _, w := range m {
		w.LogBrowser(msg)
	}
}

// Safe guards a watcher so a panic inside it is logged instead of
// unwinding into the caller. A nil watcher becomes a NullWatcher.
func Safe(w Watcher) Watcher {
	if w == nil {
		return NullWatcher{}
	}
	if s, ok := w.(safeWatcher); ok {
		return s
	}
	return safeWatcher{inner: w}
}

type safeWatcher struct {
	inner Watcher
}

func (s safeWatcher) LogCritical(msg string) {
	defer recoverWatcher("LogCritical")
	s.inner.LogCritical(msg)
}

func (s safeWatcher) LogBrowser(msg string) {
	defer recoverWatcher("LogBrowser")
	s.inner.LogBrowser(msg)
}

func recoverWatcher(method string) {
	if r := recover(); r != nil {
		log.Error(log.CatDiag, "watcher panicked", "method", method, "panic", fmt.Sprint(r))
	}
}

// Recorder is a Watcher that keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	critical []string
	browser  []string
}

func (r *Recorder) LogCritical(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.critical = append(r.critical, msg)
}

func (r *Recorder) LogBrowser(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.browser = append(r.browser, msg)
}

// Critical returns a copy of the critical messages received so far.
func (r *Recorder) Critical() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.critical...)
}

// Browser returns a copy of the browser messages received so far.
func (r *Recorder) Browser() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.browser...)
}
