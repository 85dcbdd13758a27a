package navigation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/diagnostics"
	"github.com/zjrosen/twinview/internal/headless"
	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/pubsub"
	"github.com/zjrosen/twinview/internal/transition"
)

type Home struct{ Title string }

type Unregistered struct{}

// Person keeps a back-reference to its navigator.
type Person struct {
	Name string

	mu  sync.Mutex
	nav *navigation.Navigator
	// onSet runs on every SetNavigator call.
	onSet func(*navigation.Navigator)
}

func (p *Person) SetNavigator(n *navigation.Navigator) {
	p.mu.Lock()
	p.nav = n
	p.mu.Unlock()
	if p.onSet != nil {
		p.onSet(n)
	}
}

func (p *Person) Navigator() *navigation.Navigator {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav
}

type harness struct {
	provider *headless.Provider
	engine   *headless.Engine
	injector *headless.Injector
	registry *locator.Registry
	watcher  *diagnostics.Recorder
	nav      *navigation.Navigator
	events   <-chan pubsub.Event[navigation.Event]
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	providerOpts []headless.ProviderOption
	animator     transition.Animator
	recovery     navigation.RecoveryConfig
	useNavigable bool
	noEvents     bool
}

func withProvider(opts ...headless.ProviderOption) harnessOption {
	return func(c *harnessConfig) { c.providerOpts = append(c.providerOpts, opts...) }
}

func withAnimator(a transition.Animator) harnessOption {
	return func(c *harnessConfig) { c.animator = a }
}

func withRecovery(r navigation.RecoveryConfig) harnessOption {
	return func(c *harnessConfig) { c.recovery = r }
}

func withNavigable() harnessOption {
	return func(c *harnessConfig) { c.useNavigable = true }
}

func withoutEvents() harnessOption {
	return func(c *harnessConfig) { c.noEvents = true }
}

func newHarness(t testing.TB, opts ...harnessOption) *harness {
	t.Helper()
	var cfg harnessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		provider: headless.NewProvider(cfg.providerOpts...),
		engine:   headless.NewEngine(0),
		injector: &headless.Injector{},
		registry: locator.NewRegistry(
			locator.Entry{Name: "Home", Path: "/home"},
			locator.Entry{Name: "Person", Path: "/person"},
			locator.Entry{Name: "Person", ID: "detail", Path: "/person/detail"},
		),
		watcher: &diagnostics.Recorder{},
	}

	nav, err := navigation.New(navigation.Config{
		Provider:     h.provider,
		Engine:       h.engine,
		Locator:      h.registry,
		Injector:     h.injector,
		Animator:     cfg.animator,
		Watcher:      h.watcher,
		UseNavigable: cfg.useNavigable,
		Recovery:     cfg.recovery,
	})
	require.NoError(t, err)
	h.nav = nav

	if !cfg.noEvents {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		h.events = nav.Subscribe(ctx)
	}
	t.Cleanup(func() { _ = nav.Close() })
	return h
}

func (h *harness) navigate(t testing.TB, vm any, opts ...navigation.Option) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.nav.Navigate(ctx, vm, opts...))
}

func (h *harness) active(t testing.TB) *headless.Window {
	t.Helper()
	a := h.nav.Active()
	require.NotNil(t, a, "expected an active window")
	return a.(*headless.Window)
}

// next returns the next event or fails after a timeout.
func (h *harness) next(t testing.TB) pubsub.Event[navigation.Event] {
	t.Helper()
	select {
	case ev, ok := <-h.events:
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return pubsub.Event[navigation.Event]{}
	}
}

// await skips events until one of type typ arrives.
func (h *harness) await(t testing.TB, typ pubsub.EventType) navigation.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-h.events:
			require.True(t, ok, "event stream closed while waiting for %s", typ)
			if ev.Type == typ {
				return ev.Payload
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
			return navigation.Event{}
		}
	}
}

// quiet asserts no event arrives within d.
func (h *harness) quiet(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case ev, ok := <-h.events:
		if ok {
			t.Fatalf("unexpected event %s", ev.Type)
		}
	case <-time.After(d):
	}
}

// waitURL waits until w has been asked to load path.
func waitURL(t testing.TB, w *headless.Window, path string) {
	t.Helper()
	require.Eventually(t, func() bool { return w.URL() == path }, 2*time.Second, time.Millisecond)
}

func nextWindow(t testing.TB, p *headless.Provider) *headless.Window {
	t.Helper()
	select {
	case w := <-p.Created():
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no window created")
		return nil
	}
}
