package headless

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/zjrosen/twinview/internal/binding"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/transition"
	"github.com/zjrosen/twinview/internal/window"
)

// BindScriptPrefix starts the script Engine runs to hand the view-model
// snapshot to the page.
const BindScriptPrefix = "window.__twinview.bind("

// Binding is the binding produced by Engine.
type Binding struct {
	root     any
	mode     binding.Mode
	windowID string

	mu     sync.Mutex
	closed int
}

var _ binding.Binding = (*Binding)(nil)

func (b *Binding) Root() any          { return b.root }
func (b *Binding) Mode() binding.Mode { return b.mode }

// WindowID is the window the binding was made against.
func (b *Binding) WindowID() string { return b.windowID }

// Close tears the binding down. Repeated calls are counted, not errors.
func (b *Binding) Close() error {
	b.mu.Lock()
	b.closed++
	b.mu.Unlock()
	return nil
}

// CloseCount reports how many times Close was called.
func (b *Binding) CloseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Engine is a binding engine that serializes the view-model into the page.
type Engine struct {
	latency time.Duration

	mu       sync.Mutex
	bindErr  error
	gate     chan struct{}
	bindings []*Binding
}

var _ binding.Engine = (*Engine)(nil)

// NewEngine creates an engine whose binds take latency.
func NewEngine(latency time.Duration) *Engine {
	return &Engine{latency: latency}
}

// FailBind makes every later Bind return err. nil restores normal binds.
func (e *Engine) FailBind(err error) {
	e.mu.Lock()
	e.bindErr = err
	e.mu.Unlock()
}

// Hold makes binds wait until the returned release function is called.
func (e *Engine) Hold() (release func()) {
	gate := make(chan struct{})
	e.mu.Lock()
	e.gate = gate
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			if e.gate == gate {
				e.gate = nil
			}
			e.mu.Unlock()
			close(gate)
		})
	}
}

// Bind implements binding.Engine.
func (e *Engine) Bind(ctx context.Context, ve *binding.ViewEngine, vm any, mode binding.Mode, tr *transition.Wrapper) (binding.Binding, error) {
	e.mu.Lock()
	gate := e.gate
	bindErr := e.bindErr
	e.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if bindErr != nil {
		return nil, bindErr
	}

	snapshot, err := json.Marshal(vm)
	if err != nil {
		return nil, fmt.Errorf("serializing view-model: %w", err)
	}
	if err := ve.Window.MainFrame().ExecuteScript(BindScriptPrefix + string(snapshot) + ")"); err != nil {
		return nil, fmt.Errorf("running bind script: %w", err)
	}

	b := &Binding{root: vm, mode: mode, windowID: ve.Window.ID()}
	e.mu.Lock()
	e.bindings = append(e.bindings, b)
	e.mu.Unlock()

	transitionID := ""
	if tr != nil {
		transitionID = tr.ID()
	}
	log.Debug(log.CatBinding, "bound", "window", ve.Window.ID(), "mode", mode.String(), "transition", transitionID)
	return b, nil
}

// Bindings returns every binding produced, oldest first.
func (e *Engine) Bindings() []*Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Binding(nil), e.bindings...)
}

// SessionScript is what Injector runs in every fresh window.
const SessionScript = "window.__twinview = window.__twinview || {}"

// Injector runs SessionScript before any other script in a window.
type Injector struct {
	mu    sync.Mutex
	count int
}

var _ binding.SessionInjector = (*Injector)(nil)

func (i *Injector) ExecuteFirst(exec window.ScriptExecutor) {
	i.mu.Lock()
	i.count++
	i.mu.Unlock()
	if err := exec.ExecuteScript(SessionScript); err != nil {
		log.ErrorErr(log.CatBinding, "session injection failed", err)
	}
}

// Count reports how many windows were prepared.
func (i *Injector) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count
}
