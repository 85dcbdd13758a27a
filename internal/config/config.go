// Package config provides configuration types and defaults for twinview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/twinview/internal/binding"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/tracing"
)

// Config holds all configuration options for twinview.
type Config struct {
	Navigation  NavigationConfig  `mapstructure:"navigation"`
	Locator     LocatorConfig     `mapstructure:"locator"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Tracing     tracing.Config    `mapstructure:"tracing"`
	Simulator   SimulatorConfig   `mapstructure:"simulator"`
	Log         LogConfig         `mapstructure:"log"`
	Flags       map[string]bool   `mapstructure:"flags"`
}

// NavigationConfig holds navigator behavior.
type NavigationConfig struct {
	// RecoveryRate is the number of crash recoveries allowed per second.
	// Zero means unthrottled.
	RecoveryRate float64 `mapstructure:"recovery_rate"`

	// RecoveryBurst is the limiter burst when RecoveryRate is set.
	RecoveryBurst int `mapstructure:"recovery_burst"`

	// MaxConsecutiveCrashes stops recovering after this many crashes with no
	// user navigation in between. Zero means unlimited.
	MaxConsecutiveCrashes int `mapstructure:"max_consecutive_crashes"`

	DefaultMode  string `mapstructure:"default_mode"` // two_way (default), one_way, one_time
	UseNavigable bool   `mapstructure:"use_navigable"`
}

// Recovery returns the navigator recovery policy.
func (n NavigationConfig) Recovery() navigation.RecoveryConfig {
	return navigation.RecoveryConfig{
		Rate:                  n.RecoveryRate,
		Burst:                 n.RecoveryBurst,
		MaxConsecutiveCrashes: n.MaxConsecutiveCrashes,
	}
}

// Mode returns the parsed default binding mode.
func (n NavigationConfig) Mode() binding.Mode {
	mode, err := binding.ParseMode(n.DefaultMode)
	if err != nil {
		return binding.TwoWay
	}
	return mode
}

// LocatorConfig configures view resolution.
type LocatorConfig struct {
	// RegistryFile is the YAML file mapping view names to content paths.
	// Default: ~/.config/twinview/views.yaml
	RegistryFile string `mapstructure:"registry_file"`

	// Watch reloads the registry when the file changes.
	Watch bool `mapstructure:"watch"`

	// CacheTTL memoizes resolutions. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	Debounce time.Duration `mapstructure:"debounce"`
}

// DiagnosticsConfig configures persistence of critical and browser logs.
type DiagnosticsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	StorePath string `mapstructure:"store_path"` // Default: ~/.config/twinview/diagnostics.db

	// RetainDays prunes entries older than this on startup. Zero keeps all.
	RetainDays int `mapstructure:"retain_days"`
}

// SimulatorConfig drives the headless rendering surface.
type SimulatorConfig struct {
	LoadLatency    time.Duration `mapstructure:"load_latency"`
	BindLatency    time.Duration `mapstructure:"bind_latency"`
	OpenAnimation  time.Duration `mapstructure:"open_animation"`
	CloseAnimation time.Duration `mapstructure:"close_animation"`
	ConsoleOnLoad  bool          `mapstructure:"console_on_load"`
}

// LogConfig configures the debug log file.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // empty disables file logging
	Level string `mapstructure:"level"` // debug, info (default), warn, error
}

// DefaultConfigDir returns ~/.config/twinview or empty string if the home
// dir is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "twinview")
}

func defaultPath(name string) string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// DefaultRegistryFile returns the default view registry location.
func DefaultRegistryFile() string { return defaultPath("views.yaml") }

// DefaultStorePath returns the default diagnostics database location.
func DefaultStorePath() string { return defaultPath("diagnostics.db") }

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string { return defaultPath(filepath.Join("traces", "traces.jsonl")) }

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Navigation: NavigationConfig{
			DefaultMode: "two_way",
		},
		Locator: LocatorConfig{
			RegistryFile: DefaultRegistryFile(),
			Watch:        true,
			CacheTTL:     time.Minute,
			Debounce:     250 * time.Millisecond,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:    false,
			StorePath:  DefaultStorePath(),
			RetainDays: 30,
		},
		Tracing: tr,
		Simulator: SimulatorConfig{
			LoadLatency:    50 * time.Millisecond,
			BindLatency:    10 * time.Millisecond,
			OpenAnimation:  150 * time.Millisecond,
			CloseAnimation: 150 * time.Millisecond,
			ConsoleOnLoad:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks every section.
func Validate(c Config) error {
	if err := ValidateNavigation(c.Navigation); err != nil {
		return err
	}
	if err := ValidateLocator(c.Locator); err != nil {
		return err
	}
	if err := ValidateDiagnostics(c.Diagnostics); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if err := ValidateSimulator(c.Simulator); err != nil {
		return err
	}
	return ValidateLog(c.Log)
}

// ValidateNavigation checks navigation configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateNavigation(nav NavigationConfig) error {
	if err := nav.Recovery().Validate(); err != nil {
		return fmt.Errorf("navigation: %w", err)
	}
	if nav.DefaultMode != "" {
		if _, err := binding.ParseMode(nav.DefaultMode); err != nil {
			return fmt.Errorf("navigation.default_mode must be \"two_way\", \"one_way\", or \"one_time\", got %q", nav.DefaultMode)
		}
	}
	return nil
}

// ValidateLocator checks locator configuration for errors.
func ValidateLocator(loc LocatorConfig) error {
	if loc.Watch && loc.RegistryFile == "" {
		return fmt.Errorf("locator.registry_file is required when watch is enabled")
	}
	if loc.CacheTTL < 0 {
		return fmt.Errorf("locator.cache_ttl must be >= 0, got %v", loc.CacheTTL)
	}
	if loc.Debounce < 0 {
		return fmt.Errorf("locator.debounce must be >= 0, got %v", loc.Debounce)
	}
	return nil
}

// ValidateDiagnostics checks diagnostics configuration for errors.
func ValidateDiagnostics(d DiagnosticsConfig) error {
	if d.Enabled && d.StorePath == "" {
		return fmt.Errorf("diagnostics.store_path is required when diagnostics are enabled")
	}
	if d.StorePath != "" && !filepath.IsAbs(d.StorePath) {
		return fmt.Errorf("diagnostics.store_path must be an absolute path, got %q", d.StorePath)
	}
	if d.RetainDays < 0 {
		return fmt.Errorf("diagnostics.retain_days must be >= 0, got %d", d.RetainDays)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	if tr.Exporter != "" {
		switch tr.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tr.Enabled {
		if tr.Exporter == tracing.ExporterFile && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == tracing.ExporterOTLP && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateSimulator rejects negative latencies.
func ValidateSimulator(s SimulatorConfig) error {
	for name, d := range map[string]time.Duration{
		"load_latency":    s.LoadLatency,
		"bind_latency":    s.BindLatency,
		"open_animation":  s.OpenAnimation,
		"close_animation": s.CloseAnimation,
	} {
		if d < 0 {
			return fmt.Errorf("simulator.%s must be >= 0, got %v", name, d)
		}
	}
	return nil
}

// ValidateLog checks the log level name.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# twinview configuration

# Navigator behavior
navigation:
  default_mode: two_way        # two_way (default), one_way, one_time
  use_navigable: false         # hand the navigator to view-models that accept it
  # recovery_rate: 0           # crash recoveries per second, 0 = unthrottled
  # recovery_burst: 1
  # max_consecutive_crashes: 0 # stop recovering after N crashes, 0 = unlimited

# View registry
locator:
  # registry_file: ~/.config/twinview/views.yaml
  watch: true       # reload the registry when the file changes
  cache_ttl: 1m     # memoize resolutions, 0 disables
  debounce: 250ms

# Persist critical and browser messages to sqlite
diagnostics:
  enabled: false
  # store_path: ~/.config/twinview/diagnostics.db
  retain_days: 30

# Distributed tracing, one span per transition
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/twinview/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Headless rendering surface used by run and tui
simulator:
  load_latency: 50ms
  bind_latency: 10ms
  open_animation: 150ms
  close_animation: 150ms
  console_on_load: true

log:
  # path: /tmp/twinview.log  # empty disables file logging
  level: info

# Feature flags
# flags:
#   diagnostics-store: true   # persist diagnostics when diagnostics.enabled is set
#   recovery-throttle: true   # apply recovery_rate and max_consecutive_crashes
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
