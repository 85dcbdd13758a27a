// Package flags provides feature flags read from the flags config section.
// Flags are read-only after initialization; unknown flags read as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/twinview/internal/log"
)

const (
	// FlagDiagnosticsStore persists critical and browser messages to the
	// diagnostics store when diagnostics.enabled is also set.
	FlagDiagnosticsStore = "diagnostics-store"

	// FlagRecoveryThrottle applies navigation.recovery_rate and
	// navigation.max_consecutive_crashes. When off, every crash is recovered.
	FlagRecoveryThrottle = "recovery-throttle"
)

// defaults holds the value of every declared flag when config is silent.
var defaults = map[string]bool{
	FlagDiagnosticsStore: true,
	FlagRecoveryThrottle: true,
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from the declared defaults overlaid with the
// configured values. A nil map yields the defaults.
func New(configured map[string]bool) *Registry {
	flags := maps.Clone(defaults)
	for name, value := range configured {
		if _, known := defaults[name]; !known {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		flags[name] = value
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on.
// Unknown flags and a nil registry read as false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Known returns the declared flag names, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}
