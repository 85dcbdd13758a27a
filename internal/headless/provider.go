package headless

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/window"
)

// Provider creates simulated windows.
type Provider struct {
	latency    time.Duration
	manual     bool
	dispatcher window.Dispatcher
	console    []window.ConsoleMessage
	beforeLoad func(w *Window, path string) bool
	scriptFn   func(code string) error

	mu        sync.Mutex
	windows   []*Window
	createErr error
	created   chan *Window
}

var _ window.Provider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLoadLatency delays every load by d.
func WithLoadLatency(d time.Duration) ProviderOption {
	return func(p *Provider) { p.latency = d }
}

// WithManualLoad leaves loads pending until Window.CompleteLoad is called.
func WithManualLoad() ProviderOption {
	return func(p *Provider) { p.manual = true }
}

// WithDispatcher sets the display dispatcher. The default runs inline.
func WithDispatcher(d window.Dispatcher) ProviderOption {
	return func(p *Provider) { p.dispatcher = d }
}

// WithConsole makes every loaded page write msgs to its console.
func WithConsole(msgs ...window.ConsoleMessage) ProviderOption {
	return func(p *Provider) { p.console = msgs }
}

// WithBeforeLoad runs fn before each automatic load completes. Returning
// false suppresses the load, e.g. after fn crashed the window.
func WithBeforeLoad(fn func(w *Window, path string) bool) ProviderOption {
	return func(p *Provider) { p.beforeLoad = fn }
}

// WithScriptHandler runs fn for every script executed in any window.
func WithScriptHandler(fn func(code string) error) ProviderOption {
	return func(p *Provider) { p.scriptFn = fn }
}

// NewProvider creates a provider.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		dispatcher: window.Inline,
		created:    make(chan *Window, 64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create implements window.Provider.
func (p *Provider) Create(ctx context.Context) (window.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := newWindow(p.scriptFn)
	if !p.manual {
		w.navigated = func(w *Window) { go p.autoLoad(ctx, w) }
	}

	p.mu.Lock()
	if p.createErr != nil {
		err := p.createErr
		p.mu.Unlock()
		return nil, err
	}
	p.windows = append(p.windows, w)
	p.mu.Unlock()

	log.Debug(log.CatWindow, "window created", "window", w.ID())
	select {
	case p.created <- w:
	default:
	}
	return w, nil
}

// autoLoad completes a navigation after the configured latency.
func (p *Provider) autoLoad(ctx context.Context, w *Window) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
	if p.beforeLoad != nil && !p.beforeLoad(w, w.URL()) {
		return
	}
	w.CompleteLoad()
	for _, m := range p.console {
		w.console.Emit(m)
	}
}

// DisplayDispatcher implements window.Provider.
func (p *Provider) DisplayDispatcher() window.Dispatcher {
	return p.dispatcher
}

// FailCreate makes Create return err until called again with nil.
func (p *Provider) FailCreate(err error) {
	p.mu.Lock()
	p.createErr = err
	p.mu.Unlock()
}

// Windows returns every window created so far, oldest first.
func (p *Provider) Windows() []*Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Window(nil), p.windows...)
}

// Live returns the windows that are not closed.
func (p *Provider) Live() []*Window {
	var live []*Window
	for _, w := range p.Windows() {
		if !w.Closed() {
			live = append(live, w)
		}
	}
	return live
}

// Created receives each window as it is created. Sends are dropped when
// nobody reads and the buffer is full.
func (p *Provider) Created() <-chan *Window {
	return p.created
}
