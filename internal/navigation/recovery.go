package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/zjrosen/twinview/internal/binding"
	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/tracing"
	"github.com/zjrosen/twinview/internal/window"
)

// ErrRecoveryLimit is reported when a session crashes more often in a row
// than RecoveryConfig.MaxConsecutiveCrashes allows.
var ErrRecoveryLimit = errors.New("too many consecutive crashes")

// RecoveryConfig bounds crash recovery. The zero value recovers every
// crash immediately.
type RecoveryConfig struct {
	// Rate is the sustained number of recoveries per second. 0 means unlimited.
	Rate float64
	// Burst is the number of recoveries allowed back to back. Defaults to 1
	// when Rate is set.
	Burst int
	// MaxConsecutiveCrashes stops recovering after this many crashes without
	// a successful user navigation in between. 0 means no cap.
	MaxConsecutiveCrashes int
}

// Validate checks the configuration for negative values.
func (c RecoveryConfig) Validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("recovery rate must be >= 0, got %v", c.Rate)
	}
	if c.Burst < 0 {
		return fmt.Errorf("recovery burst must be >= 0, got %d", c.Burst)
	}
	if c.MaxConsecutiveCrashes < 0 {
		return fmt.Errorf("max consecutive crashes must be >= 0, got %d", c.MaxConsecutiveCrashes)
	}
	return nil
}

// recoveryGate decides whether, and when, another recovery may start.
type recoveryGate struct {
	limiter *rate.Limiter
	max     int

	mu      sync.Mutex
	crashes int
}

func newRecoveryGate(cfg RecoveryConfig) (*recoveryGate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limit := rate.Inf
	burst := 0
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
		burst = max(cfg.Burst, 1)
	}
	return &recoveryGate{limiter: rate.NewLimiter(limit, burst), max: cfg.MaxConsecutiveCrashes}, nil
}

// admit records a crash and blocks until the limiter allows a recovery.
func (g *recoveryGate) admit(ctx context.Context) error {
	g.mu.Lock()
	g.crashes++
	crashes := g.crashes
	g.mu.Unlock()

	if g.max > 0 && crashes > g.max {
		return fmt.Errorf("%w (%d)", ErrRecoveryLimit, crashes)
	}
	return g.limiter.Wait(ctx)
}

func (g *recoveryGate) reset() {
	g.mu.Lock()
	g.crashes = 0
	g.mu.Unlock()
}

// recoverFrom handles a crash of h. Only the active window is recovered; a
// crash reported by any other handle is ignored.
func (n *Navigator) recoverFrom(h window.Handle, c window.Crash) {
	n.mu.Lock()
	active := n.slots.active
	if n.disposed || active == nil || active.handle != h || n.state != StateIdle {
		n.mu.Unlock()
		return
	}
	b := n.binding.Get()
	url := n.url
	id := n.id
	n.slots.active = nil
	n.state = StateRecovering
	n.stats.Crashes++
	outgoing := rootOf(b)
	n.wg.Add(1)
	n.mu.Unlock()
	defer n.wg.Done()

	req := &request{vm: outgoing, id: id, mode: binding.TwoWay, recovery: true, fallback: url}
	if b != nil {
		req.mode = b.Mode()
	}

	msg := fmt.Sprintf("WebView crashed trying recover, window %s, page %s, reason %s", h.ID(), url, crashReason(c))
	n.logCritical(msg)
	_, span := n.tracer.Start(n.ctx, tracing.SpanRecover, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, n.sessionID),
		attribute.String(tracing.AttrWindowID, h.ID()),
		attribute.String(tracing.AttrViewPath, url),
		attribute.String(tracing.AttrCrashReason, c.Reason),
	))
	span.AddEvent(tracing.EventWindowCrashed)
	defer span.End()

	active.unsubscribe()
	n.closeHandle(h)
	n.binding.Clear()

	if req.vm == nil {
		n.abandonRecovery("no view-model to restore")
		return
	}
	if err := n.recovery.admit(n.ctx); err != nil {
		span.AddEvent(tracing.EventRecoveryDenied)
		n.abandonRecovery(err.Error())
		return
	}

	path, ok := n.locator.Solve(req.vm, req.id)
	if !ok {
		path = req.fallback
	}
	if path == "" {
		n.abandonRecovery(fmt.Sprintf("unable to locate view for %s", locator.NameOf(req.vm)))
		return
	}

	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	log.Info(log.CatNav, "recovering", "view", locator.NameOf(req.vm), "path", path)
	n.run(req, path, nil)
}

func (n *Navigator) abandonRecovery(reason string) {
	n.mu.Lock()
	disposed := n.disposed
	if !disposed {
		n.state = StateIdle
	}
	n.mu.Unlock()
	if !disposed {
		n.logCritical("Recovery abandoned: " + reason)
	}
}
