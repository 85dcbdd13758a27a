// Package watcher provides debounced file watching for configuration files
// such as the view registry.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/twinview/internal/log"
)

// Config holds watcher options.
type Config struct {
	Path        string
	DebounceDur time.Duration
}

// DefaultConfig watches path with a 250ms debounce.
func DefaultConfig(path string) Config {
	return Config{Path: path, DebounceDur: 250 * time.Millisecond}
}

// Watcher calls a function once per burst of changes to one file.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	loop    sync.WaitGroup
}

// New creates a watcher for cfg.Path. Nothing is observed until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{fs: fsw, path: filepath.Clean(cfg.Path), debounce: cfg.DebounceDur}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Start watches the file's directory, so editors that save by renaming a
// temp file over it are still seen. onChange runs on its own goroutine,
// debounce after the last write of a burst.
func (w *Watcher) Start(onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return errors.New("watcher already started")
	}

	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w.started = true
	w.loop.Add(1)
	go w.run(onChange)
	return nil
}

// Stop ends watching. A pending notification is discarded.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.loop.Wait()
	return err
}

func (w *Watcher) run(onChange func()) {
	defer w.loop.Done()
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule(onChange)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatLocator, "file watcher error", err, "path", w.path)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			onChange()
		}
	})
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
