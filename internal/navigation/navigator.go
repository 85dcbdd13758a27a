// Package navigation implements the double-window navigator: the next view is
// loaded and bound in a hidden pending window while the active one stays on
// screen, and the two are swapped once the binding is ready and the outgoing
// transition has closed. A crash of the active window re-renders the same
// view-model on a fresh window.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/twinview/internal/binding"
	"github.com/zjrosen/twinview/internal/diagnostics"
	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/pubsub"
	"github.com/zjrosen/twinview/internal/tracing"
	"github.com/zjrosen/twinview/internal/transition"
	"github.com/zjrosen/twinview/internal/window"
)

// State is the navigator's session state.
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// Config holds the collaborators of a Navigator. Provider, Engine and
// Locator are required.
type Config struct {
	Provider window.Provider
	Engine   binding.Engine
	Locator  locator.Locator

	// Injector prepares fresh windows before their first script runs. Optional.
	Injector binding.SessionInjector
	// Animator drives transition open/close animations. Nil means none.
	Animator transition.Animator
	// Watcher receives critical and browser diagnostics. Nil means none.
	Watcher diagnostics.Watcher
	// Tracer records one span per transition. Nil means no tracing.
	Tracer trace.Tracer

	UseNavigable bool
	Recovery     RecoveryConfig

	// SessionID labels diagnostics and spans. Generated when empty.
	SessionID string
}

// slot is one window position together with the subscriptions the
// navigator holds on it.
type slot struct {
	handle  window.Handle
	console *window.Subscription
	crash   *window.Subscription
	// crashed latches the first crash reported while the slot is active.
	crashed *window.Crash
}

func (s *slot) unsubscribe() {
	s.console.Unsubscribe()
	s.crash.Unsubscribe()
	s.console, s.crash = nil, nil
}

type slots struct {
	active  *slot
	pending *slot
}

// Navigator owns one navigation session.
type Navigator struct {
	provider   window.Provider
	engine     binding.Engine
	locator    locator.Locator
	injector   binding.SessionInjector
	animator   transition.Animator
	dispatcher window.Dispatcher
	tracer     trace.Tracer
	sessionID  string

	broker   *pubsub.Broker[Event]
	binding  binding.Holder
	recovery *recoveryGate

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	state         State
	slots         slots
	url           string
	id            string
	useNavigable  bool
	current       *transition.Wrapper
	firstLoadDone bool
	disposed      bool
	waiters       []chan error
	watcher       diagnostics.Watcher
	stats         Stats
}

// New creates an idle navigator with no active window.
func New(cfg Config) (*Navigator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("navigator: window provider is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("navigator: binding engine is required")
	}
	if cfg.Locator == nil {
		return nil, fmt.Errorf("navigator: locator is required")
	}
	gate, err := newRecoveryGate(cfg.Recovery)
	if err != nil {
		return nil, fmt.Errorf("navigator: %w", err)
	}

	dispatcher := cfg.Provider.DisplayDispatcher()
	if dispatcher == nil {
		dispatcher = window.Inline
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.Noop().Tracer()
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Navigator{
		provider:     cfg.Provider,
		engine:       cfg.Engine,
		locator:      cfg.Locator,
		injector:     cfg.Injector,
		animator:     cfg.Animator,
		dispatcher:   dispatcher,
		tracer:       tracer,
		sessionID:    sessionID,
		broker:       pubsub.NewBroker[Event](),
		recovery:     gate,
		ctx:          ctx,
		cancel:       cancel,
		useNavigable: cfg.UseNavigable,
		watcher:      diagnostics.Safe(cfg.Watcher),
	}, nil
}

// SessionID identifies this navigator in diagnostics.
func (n *Navigator) SessionID() string { return n.sessionID }

// Subscribe returns a channel of navigator events, closed when ctx ends or
// the navigator is closed.
func (n *Navigator) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return n.broker.Subscribe(ctx)
}

// State returns the current session state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// URL returns the path of the last successful navigation.
func (n *Navigator) URL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.url
}

// Active returns the visible window, or nil before the first swap.
func (n *Navigator) Active() window.Handle {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.slots.active == nil {
		return nil
	}
	return n.slots.active.handle
}

// Root returns the view-model bound to the active window, or nil.
func (n *Navigator) Root() any {
	return rootOf(n.binding.Get())
}

// Stats returns a snapshot of the session counters.
func (n *Navigator) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

// SetWatcher replaces the diagnostics watcher. nil disables diagnostics.
func (n *Navigator) SetWatcher(w diagnostics.Watcher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.watcher = diagnostics.Safe(w)
}

// SetUseNavigable toggles the view-model back-reference and applies it to
// the view-model currently shown.
func (n *Navigator) SetUseNavigable(use bool) {
	n.mu.Lock()
	if n.disposed || n.useNavigable == use {
		n.mu.Unlock()
		return
	}
	n.useNavigable = use
	n.mu.Unlock()

	if use {
		setNavigator(n.Root(), n)
	} else {
		setNavigator(n.Root(), nil)
	}
}

// Navigate shows vm and blocks until the swap and its navigation event are
// published. It returns nil without doing anything when vm is nil, when a
// transition is already in flight or when the navigator is closed. ctx only
// bounds the wait; the transition itself keeps running.
func (n *Navigator) Navigate(ctx context.Context, vm any, opts ...Option) error {
	select {
	case err := <-n.NavigateAsync(ctx, vm, opts...):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NavigateAsync is Navigate without the wait. The returned channel receives
// exactly one value.
func (n *Navigator) NavigateAsync(ctx context.Context, vm any, opts ...Option) <-chan error {
	done := make(chan error, 1)
	if err := ctx.Err(); err != nil {
		done <- err
		return done
	}
	if vm == nil || !n.acceptsRequests() {
		n.countDropped(vm)
		done <- nil
		return done
	}

	req := newRequest(vm, opts)
	path, ok := n.locator.Solve(vm, req.id)
	if !ok {
		err := &UnresolvedViewError{ViewModel: vm, ID: req.id}
		log.Warn(log.CatNav, "navigation rejected", "view", locator.NameOf(vm), "error", err)
		done <- err
		return done
	}

	n.mu.Lock()
	if n.disposed || n.state != StateIdle {
		n.stats.Dropped++
		n.mu.Unlock()
		done <- nil
		return done
	}
	n.state = StateNavigating
	n.waiters = append(n.waiters, done)
	outgoing := rootOf(n.binding.Get())
	n.wg.Add(1)
	n.mu.Unlock()

	log.Debug(log.CatNav, "navigation started", "view", locator.NameOf(vm), "path", path, "id", req.id)
	go n.run(req, path, outgoing)
	return done
}

func (n *Navigator) acceptsRequests() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.disposed && n.state == StateIdle
}

func (n *Navigator) countDropped(vm any) {
	if vm == nil {
		return
	}
	n.mu.Lock()
	n.stats.Dropped++
	n.mu.Unlock()
	log.Debug(log.CatNav, "navigation dropped", "view", locator.NameOf(vm))
}

// ExecuteScript runs code in the active window's main frame. Failures are
// reported to the watcher's browser channel and never returned.
func (n *Navigator) ExecuteScript(code string) {
	n.mu.Lock()
	active := n.slots.active
	n.mu.Unlock()

	if active == nil {
		n.logBrowser(scriptFailure(code, errNoActiveWindow))
		return
	}
	if err := executeScript(active.handle, code); err != nil {
		n.logBrowser(scriptFailure(code, err))
	}
}

func executeScript(h window.Handle, code string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	frame := h.MainFrame()
	if frame == nil {
		return fmt.Errorf("window %s has no main frame", h.ID())
	}
	return frame.ExecuteScript(code)
}

func scriptFailure(code string, err error) string {
	return fmt.Sprintf("Can not execute javascript: %s, reason: %v", code, err)
}

// Close disposes the session: the binding, both windows and the event
// stream. Every step runs even when an earlier one fails; failures are
// logged. Waiting callers receive ErrDisposed. Safe to call more than once.
func (n *Navigator) Close() error {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return nil
	}
	n.disposed = true
	held := n.slots
	n.slots = slots{}
	useNavigable := n.useNavigable
	n.useNavigable = false
	waiters := n.waiters
	n.waiters = nil
	n.state = StateIdle
	n.mu.Unlock()

	log.Debug(log.CatNav, "closing navigator", "session", n.sessionID)
	root := n.Root()

	n.cancel()
	n.step("shutdown binding", func() error {
		n.binding.Shutdown()
		return nil
	})
	if useNavigable {
		n.step("clear back-reference", func() error {
			setNavigator(root, nil)
			return nil
		})
	}
	for _, s := range []*slot{held.pending, held.active} {
		if s == nil {
			continue
		}
		n.step("close window", func() error {
			s.unsubscribe()
			return s.handle.Close()
		})
	}
	n.step("close event broker", func() error {
		n.broker.Close()
		return nil
	})

	for _, w := range waiters {
		w <- ErrDisposed
	}
	return nil
}

// Wait blocks until every transition started before it returns.
func (n *Navigator) Wait() {
	n.wg.Wait()
}

// step runs one teardown action, logging errors and panics.
func (n *Navigator) step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatNav, "teardown step panicked", "step", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(); err != nil {
		log.ErrorErr(log.CatNav, "teardown step failed", err, "step", name)
	}
}

// run drives one transition. It owns the pending slot until the swap.
func (n *Navigator) run(req *request, path string, outgoing any) {
	defer n.wg.Done()

	ctx, span := n.tracer.Start(n.ctx, tracing.SpanNavigate, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, n.sessionID),
		attribute.String(tracing.AttrViewModel, locator.NameOf(req.vm)),
		attribute.String(tracing.AttrViewID, req.id),
		attribute.String(tracing.AttrViewPath, path),
		attribute.String(tracing.AttrBindingMode, req.mode.String()),
		attribute.Bool(tracing.AttrRecovery, req.recovery),
	))
	defer span.End()

	if n.useNavigableNow() {
		setNavigator(outgoing, nil)
	}

	wrapper := transition.New(n.animator)
	span.SetAttributes(attribute.String(tracing.AttrTransitionID, wrapper.ID()))

	n.mu.Lock()
	previous := n.current
	hasActive := n.slots.active != nil
	n.mu.Unlock()

	closing := transition.Closed()
	if hasActive && previous != nil {
		closing = previous.Close(n.ctx)
	}

	started := time.Now()
	for attempt := 1; ; attempt++ {
		span.SetAttributes(attribute.Int(tracing.AttrAttempt, attempt))
		retry := n.attempt(ctx, span, req, path, wrapper, closing, started)
		if !retry {
			return
		}
		if err := n.recovery.admit(n.ctx); err != nil {
			span.AddEvent(tracing.EventRecoveryDenied)
			n.abort(span, nil, fmt.Errorf("retrying %s: %w", locator.NameOf(req.vm), err))
			return
		}
	}
}

// attempt loads path into a fresh window, binds it and swaps it in.
// It reports true when the pending window crashed and the load should be
// retried on another window.
func (n *Navigator) attempt(
	ctx context.Context,
	span trace.Span,
	req *request,
	path string,
	wrapper *transition.Wrapper,
	closing <-chan struct{},
	started time.Time,
) bool {
	h, err := n.provider.Create(ctx)
	if err != nil {
		n.abort(span, nil, fmt.Errorf("creating window: %w", err))
		return false
	}
	span.AddEvent(tracing.EventWindowCreated, trace.WithAttributes(attribute.String(tracing.AttrWindowID, h.ID())))

	crashed := make(chan window.Crash, 1)
	pending := &slot{handle: h}
	pending.console = h.ConsoleMessage().Subscribe(func(m window.ConsoleMessage) {
		n.logBrowser(fmt.Sprintf("%s, page %s", m, h.URL()))
	})
	pending.crash = h.Crashed().Subscribe(func(c window.Crash) {
		select {
		case crashed <- c:
		default:
		}
	})

	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		pending.unsubscribe()
		n.closeHandle(h)
		n.finish(ErrDisposed)
		return false
	}
	n.slots.pending = pending
	n.mu.Unlock()

	var hook *window.Subscription
	if hooker, ok := h.(window.ScriptHooker); ok && n.injector != nil {
		hook = hooker.BeforeScriptExecution().Once(func(exec window.ScriptExecutor) {
			n.injector.ExecuteFirst(exec)
		})
	}

	loaded := make(chan window.LoadEnd, 1)
	loadSub := h.LoadEnd().Once(func(e window.LoadEnd) {
		loaded <- e
	})

	if err := h.NavigateTo(path); err != nil {
		hook.Unsubscribe()
		loadSub.Unsubscribe()
		n.abort(span, pending, fmt.Errorf("loading %s: %w", path, err))
		return false
	}

	select {
	case <-loaded:
		span.AddEvent(tracing.EventLoadEnd)
	case c := <-crashed:
		hook.Unsubscribe()
		loadSub.Unsubscribe()
		return n.pendingCrashed(span, pending, c, nil)
	case <-n.ctx.Done():
		hook.Unsubscribe()
		loadSub.Unsubscribe()
		n.finish(ErrDisposed)
		return false
	}
	hook.Unsubscribe()

	b, err := n.bind(ctx, h, req, wrapper, closing, crashed)
	if err != nil {
		if c, ok := asPendingCrash(err); ok {
			return n.pendingCrashed(span, pending, c, b)
		}
		if n.isDisposed() {
			closeQuietly(b)
			n.finish(ErrDisposed)
			return false
		}
		closeQuietly(b)
		n.abort(span, pending, fmt.Errorf("binding %s: %w", locator.NameOf(req.vm), err))
		return false
	}
	span.AddEvent(tracing.EventBound)

	return n.swap(span, req, path, pending, b, wrapper, crashed, started)
}

// bind runs the binding engine and waits for the outgoing transition to
// close. A crash of the pending window ends the wait early.
func (n *Navigator) bind(
	ctx context.Context,
	h window.Handle,
	req *request,
	wrapper *transition.Wrapper,
	closing <-chan struct{},
	crashed <-chan window.Crash,
) (binding.Binding, error) {
	bindCtx, bindSpan := n.tracer.Start(ctx, tracing.SpanBind)
	defer bindSpan.End()

	g, gctx := errgroup.WithContext(bindCtx)
	bound := make(chan struct{})

	var b binding.Binding
	g.Go(func() error {
		defer close(bound)
		var err error
		b, err = n.engine.Bind(gctx, binding.NewViewEngine(h, n.injector), req.vm, req.mode, wrapper)
		return err
	})
	g.Go(func() error {
		select {
		case <-closing:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	g.Go(func() error {
		select {
		case c := <-crashed:
			return &pendingCrash{crash: c}
		case <-bound:
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	err := g.Wait()
	if err != nil {
		bindSpan.SetStatus(codes.Error, err.Error())
	}
	return b, err
}

// swap promotes the pending window. The slot and binding changes happen in
// one critical section; collaborator calls and events follow it.
func (n *Navigator) swap(
	span trace.Span,
	req *request,
	path string,
	pending *slot,
	b binding.Binding,
	wrapper *transition.Wrapper,
	crashed chan window.Crash,
	started time.Time,
) bool {
	n.mu.Lock()
	if n.disposed || n.slots.pending != pending {
		n.mu.Unlock()
		closeQuietly(b)
		n.finish(ErrDisposed)
		return false
	}
	select {
	case c := <-crashed:
		n.mu.Unlock()
		return n.pendingCrashed(span, pending, c, b)
	default:
	}

	old := rootOf(n.binding.Get())
	replaced := n.binding.Swap(b)

	previous := n.slots.active
	firstLoad := false
	if previous != nil {
		previous.unsubscribe()
	} else if !n.firstLoadDone {
		n.firstLoadDone = true
		firstLoad = true
	}

	pending.crash.Unsubscribe()
	h := pending.handle
	n.watchActive(pending)
	n.slots.active = pending
	n.slots.pending = nil

	n.current = wrapper
	wrapper.MarkOpened()
	n.url = path
	n.id = req.id
	useNavigable := n.useNavigable
	n.mu.Unlock()

	closeQuietly(replaced)
	if previous != nil {
		n.closeHandle(previous.handle)
	}
	h.Show()
	if useNavigable {
		setNavigator(req.vm, n)
	}

	n.mu.Lock()
	n.state = StateIdle
	n.stats.Navigations++
	if req.recovery {
		n.stats.Recoveries++
	} else {
		n.recovery.reset()
	}
	n.stats.LastDuration = time.Since(started)
	n.stats.LastNavigatedAt = time.Now()
	waiters := n.waiters
	n.waiters = nil
	latched := pending.crashed
	n.mu.Unlock()

	if latched != nil {
		go n.recoverFrom(h, *latched)
	}
	span.AddEvent(tracing.EventSwapped, trace.WithAttributes(attribute.String(tracing.AttrWindowID, h.ID())))
	log.Info(log.CatNav, "navigated", "view", locator.NameOf(req.vm), "path", path, "window", h.ID(), "recovery", req.recovery)

	ev := Event{NewViewModel: req.vm, OldViewModel: old, Path: path, TransitionID: wrapper.ID()}
	if firstLoad {
		n.publish(EventFirstLoad, ev)
	}
	n.publish(EventNavigated, ev)
	if req.recovery {
		n.publish(EventRecovered, ev)
	}
	for _, w := range waiters {
		w <- nil
	}

	n.display(req.vm, wrapper, path)
	return false
}

// display runs the open animation and then publishes the display event on
// the provider's dispatcher.
func (n *Navigator) display(vm any, wrapper *transition.Wrapper, path string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		select {
		case <-wrapper.Open(n.ctx):
		case <-n.ctx.Done():
			return
		}
		n.dispatcher.Dispatch(func() {
			if n.isDisposed() {
				return
			}
			_, span := n.tracer.Start(n.ctx, tracing.SpanDisplay, trace.WithAttributes(
				attribute.String(tracing.AttrViewModel, locator.NameOf(vm)),
				attribute.String(tracing.AttrTransitionID, wrapper.ID()),
			))
			n.publish(EventDisplayed, Event{ViewModel: vm, Path: path, TransitionID: wrapper.ID()})
			span.End()
		})
	}()
}

// pendingCrashed discards a pending window that died before the swap and
// asks for a retry.
func (n *Navigator) pendingCrashed(span trace.Span, pending *slot, c window.Crash, b binding.Binding) bool {
	closeQuietly(b)

	n.mu.Lock()
	n.stats.PendingCrashes++
	n.mu.Unlock()

	if !n.releasePending(pending) {
		n.finish(ErrDisposed)
		return false
	}

	span.AddEvent(tracing.EventPendingCrashed, trace.WithAttributes(
		attribute.String(tracing.AttrWindowID, pending.handle.ID()),
		attribute.String(tracing.AttrCrashReason, c.Reason),
	))
	n.logCritical(fmt.Sprintf("Pending window %s crashed before display: %s", pending.handle.ID(), crashReason(c)))
	return true
}

// releasePending removes pending from its slot and tears it down. It
// reports false when Close took the slot first; Close then owns teardown.
func (n *Navigator) releasePending(pending *slot) bool {
	n.mu.Lock()
	owned := n.slots.pending == pending
	if owned {
		n.slots.pending = nil
	}
	n.mu.Unlock()

	if owned {
		pending.unsubscribe()
		n.closeHandle(pending.handle)
	}
	return owned
}

// watchActive subscribes to crashes of s once it becomes the active slot.
// A crash is latched on the slot; it is recovered right away when the
// session is idle and otherwise once the running transition ends without
// replacing s.
func (n *Navigator) watchActive(s *slot) {
	h := s.handle
	s.crash = h.Crashed().Subscribe(func(c window.Crash) {
		n.mu.Lock()
		if s.crashed == nil {
			s.crashed = &c
		}
		idle := n.state == StateIdle
		n.mu.Unlock()
		if idle {
			go n.recoverFrom(h, c)
		}
	})
}

// abort ends a failed transition: the pending window is discarded and
// waiters get err. An active window that crashed meanwhile is recovered.
func (n *Navigator) abort(span trace.Span, pending *slot, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent(tracing.EventTransitionError)

	if pending != nil {
		n.releasePending(pending)
	}

	var crashed window.Handle
	var crash window.Crash
	n.mu.Lock()
	if active := n.slots.active; active != nil && active.crashed != nil && !n.disposed {
		crashed, crash = active.handle, *active.crashed
	}
	n.stats.Failures++
	n.mu.Unlock()

	n.logCritical(fmt.Sprintf("Navigation failed: %v", err))
	n.finish(err)
	if crashed != nil {
		go n.recoverFrom(crashed, crash)
	}
}

// finish returns the session to idle and completes waiting callers.
func (n *Navigator) finish(err error) {
	n.mu.Lock()
	n.state = StateIdle
	waiters := n.waiters
	n.waiters = nil
	n.mu.Unlock()

	for _, w := range waiters {
		w <- err
	}
}

func (n *Navigator) publish(t pubsub.EventType, ev Event) {
	if err := n.broker.PublishWait(n.ctx, t, ev); err != nil {
		log.Debug(log.CatNav, "event not delivered", "type", string(t), "error", err)
	}
}

func (n *Navigator) logCritical(msg string) {
	n.mu.Lock()
	w := n.watcher
	n.mu.Unlock()
	log.Error(log.CatNav, msg, "session", n.sessionID)
	w.LogCritical(msg)
}

func (n *Navigator) logBrowser(msg string) {
	n.mu.Lock()
	w := n.watcher
	n.mu.Unlock()
	log.Debug(log.CatBrowser, msg, "session", n.sessionID)
	w.LogBrowser(msg)
}

func (n *Navigator) closeHandle(h window.Handle) {
	n.step("close window", h.Close)
}

func (n *Navigator) isDisposed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.disposed
}

func (n *Navigator) useNavigableNow() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.useNavigable
}

func rootOf(b binding.Binding) any {
	if b == nil {
		return nil
	}
	return b.Root()
}

func setNavigator(vm any, n *Navigator) {
	if nav, ok := vm.(Navigable); ok {
		nav.SetNavigator(n)
	}
}

func closeQuietly(b binding.Binding) {
	if b == nil {
		return
	}
	if err := b.Close(); err != nil {
		log.ErrorErr(log.CatBinding, "closing binding", err)
	}
}

type pendingCrash struct {
	crash window.Crash
}

func (e *pendingCrash) Error() string {
	return "pending window crashed: " + crashReason(e.crash)
}

func asPendingCrash(err error) (window.Crash, bool) {
	var pc *pendingCrash
	if errors.As(err, &pc) {
		return pc.crash, true
	}
	return window.Crash{}, false
}

func crashReason(c window.Crash) string {
	if c.Reason == "" {
		return "unknown reason"
	}
	return c.Reason
}
