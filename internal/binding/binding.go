// Package binding defines the contract with the data-binding engine that
// connects a view-model to a rendering surface, plus Holder, which owns the
// lifetime of the live Binding.
package binding

import (
	"context"
	"fmt"

	"github.com/zjrosen/twinview/internal/transition"
	"github.com/zjrosen/twinview/internal/window"
)

// Mode selects the direction of data flow between view-model and view.
type Mode int

const (
	TwoWay Mode = iota
	OneWay
	OneTime
)

func (m Mode) String() string {
	switch m {
	case TwoWay:
		return "two_way"
	case OneWay:
		return "one_way"
	case OneTime:
		return "one_time"
	default:
		return "unknown"
	}
}

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "two_way":
		return TwoWay, nil
	case "one_way":
		return OneWay, nil
	case "one_time":
		return OneTime, nil
	default:
		return TwoWay, fmt.Errorf("unknown binding mode: %q", s)
	}
}

// Binding is a live association between a view-model and a surface.
// Closing it tears the data binding down.
type Binding interface {
	Root() any
	Mode() Mode
	Close() error
}

// SessionInjector prepares the script session of a freshly loaded surface.
type SessionInjector interface {
	// ExecuteFirst runs before any other script in the document.
	ExecuteFirst(exec window.ScriptExecutor)
}

// ViewEngine is what the binding engine binds against: the surface that
// finished loading plus the injector used to prepare it.
type ViewEngine struct {
	Window   window.Handle
	Injector SessionInjector
}

// NewViewEngine creates a ViewEngine for h.
func NewViewEngine(h window.Handle, injector SessionInjector) *ViewEngine {
	return &ViewEngine{Window: h, Injector: injector}
}

// Engine binds view-models to loaded surfaces.
type Engine interface {
	Bind(ctx context.Context, engine *ViewEngine, vm any, mode Mode, tr *transition.Wrapper) (Binding, error)
}
