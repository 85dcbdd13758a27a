package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/twinview/internal/config"
	"github.com/zjrosen/twinview/internal/diagnostics"
	"github.com/zjrosen/twinview/internal/flags"
	"github.com/zjrosen/twinview/internal/headless"
	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/tracing"
	"github.com/zjrosen/twinview/internal/transition"
	"github.com/zjrosen/twinview/internal/viewmodel"
	"github.com/zjrosen/twinview/internal/watcher"
	"github.com/zjrosen/twinview/internal/window"
)

// builtinViews is the registry used when no registry file exists.
var builtinViews = []locator.Entry{
	{Name: "Home", Path: "/views/home.html"},
	{Name: "Person", Path: "/views/person.html"},
	{Name: "Person", ID: "detail", Path: "/views/person-detail.html"},
	{Name: "Settings", Path: "/views/settings.html"},
}

// session wires a navigator to the headless surface and every configured
// collaborator.
type session struct {
	id       string
	nav      *navigation.Navigator
	provider *headless.Provider
	pages    []*viewmodel.Page
	recorder *diagnostics.Recorder

	registry *locator.FileRegistry
	store    *diagnostics.Store
	tracer   *tracing.Provider
}

type sessionOptions struct {
	// dispatcher runs display callbacks. Nil uses a dedicated loop.
	dispatcher window.Dispatcher
}

func openSession(ctx context.Context, c config.Config, opts sessionOptions) (_ *session, err error) {
	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ff := flags.New(c.Flags)
	s := &session{id: uuid.NewString(), recorder: &diagnostics.Recorder{}}
	defer func() {
		if err != nil {
			_ = s.closeCollaborators()
		}
	}()

	entries, reg, err := openRegistry(c.Locator)
	if err != nil {
		return nil, err
	}
	s.registry = reg
	s.pages = viewmodel.Pages(entries)

	var loc locator.Locator = locator.NewRegistry(entries...)
	if reg != nil {
		loc = reg
	}
	cached := locator.NewCached(loc, c.Locator.CacheTTL)
	if reg != nil {
		reg.OnReload(cached.Invalidate)
		if c.Locator.Watch {
			if err := reg.Watch(watcher.Config{DebounceDur: c.Locator.Debounce}); err != nil {
				return nil, fmt.Errorf("watching view registry: %w", err)
			}
		}
	}

	watchers := diagnostics.Multi{diagnostics.LogWatcher{}, s.recorder}
	if c.Diagnostics.Enabled && ff.Enabled(flags.FlagDiagnosticsStore) {
		store, err := diagnostics.OpenStore(c.Diagnostics.StorePath)
		if err != nil {
			return nil, err
		}
		s.store = store
		if c.Diagnostics.RetainDays > 0 {
			before := time.Now().AddDate(0, 0, -c.Diagnostics.RetainDays)
			if n, err := store.Prune(ctx, before); err != nil {
				log.ErrorErr(log.CatDiag, "pruning diagnostics failed", err)
			} else if n > 0 {
				log.Info(log.CatDiag, "pruned diagnostics", "entries", n)
			}
		}
		watchers = append(watchers, store.Watcher(s.id))
	}

	s.tracer, err = tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	recovery := c.Navigation.Recovery()
	if !ff.Enabled(flags.FlagRecoveryThrottle) {
		recovery = navigation.RecoveryConfig{}
	}

	dispatcher := opts.dispatcher
	if dispatcher == nil {
		dispatcher = window.NewLoopDispatcher()
	}
	providerOpts := []headless.ProviderOption{
		headless.WithLoadLatency(c.Simulator.LoadLatency),
		headless.WithDispatcher(dispatcher),
	}
	if c.Simulator.ConsoleOnLoad {
		providerOpts = append(providerOpts, headless.WithConsole(window.ConsoleMessage{
			Message: "view ready", Source: "app.js", Line: 1,
		}))
	}
	s.provider = headless.NewProvider(providerOpts...)

	s.nav, err = navigation.New(navigation.Config{
		Provider: s.provider,
		Engine:   headless.NewEngine(c.Simulator.BindLatency),
		Locator:  cached,
		Injector: &headless.Injector{},
		Animator: transition.Delay{
			OpenFor:  c.Simulator.OpenAnimation,
			CloseFor: c.Simulator.CloseAnimation,
		},
		Watcher:      watchers,
		Tracer:       s.tracer.Tracer(),
		UseNavigable: c.Navigation.UseNavigable,
		Recovery:     recovery,
		SessionID:    s.id,
	})
	if err != nil {
		return nil, err
	}
	log.Info(log.CatNav, "session opened", "session", s.id, "views", len(s.pages))
	return s, nil
}

// openRegistry loads the registry file when it exists, otherwise returns
// the built-in views.
func openRegistry(c config.LocatorConfig) ([]locator.Entry, *locator.FileRegistry, error) {
	if c.RegistryFile == "" {
		return builtinViews, nil, nil
	}
	if _, err := os.Stat(c.RegistryFile); errors.Is(err, os.ErrNotExist) {
		log.Info(log.CatLocator, "no view registry, using built-in views", "path", c.RegistryFile)
		return builtinViews, nil, nil
	}
	reg, err := locator.OpenFile(c.RegistryFile)
	if err != nil {
		return nil, nil, err
	}
	return reg.Entries(), reg, nil
}

// mode returns the binding option for the configured default mode.
func mode(c config.Config) navigation.Option {
	return navigation.WithMode(c.Navigation.Mode())
}

// Close disposes the navigator and flushes collaborators.
func (s *session) Close(ctx context.Context) error {
	var errs []error
	if s.nav != nil {
		errs = append(errs, s.nav.Close())
	}
	if d, ok := s.provider.DisplayDispatcher().(*window.LoopDispatcher); ok {
		d.Close()
	}
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(ctx))
	}
	s.tracer = nil
	errs = append(errs, s.closeCollaborators())
	return errors.Join(errs...)
}

func (s *session) closeCollaborators() error {
	var errs []error
	if s.registry != nil {
		errs = append(errs, s.registry.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(context.Background()))
	}
	s.registry, s.store, s.tracer = nil, nil, nil
	return errors.Join(errs...)
}
