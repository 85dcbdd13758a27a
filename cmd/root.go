package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/twinview/internal/config"
	"github.com/zjrosen/twinview/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 response does not race with the input loop.
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".twinview/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "twinview",
	Short: "A double-buffered navigator for web-rendered views",
	Long: `twinview drives a navigation session: each view-model is resolved to a
content path, loaded and bound in a hidden window, and swapped in only once
it is ready. A crashed window is recovered by rebinding the same view-model.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd.Name() == "tui")
	},
}

var logCleanup = func() {}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(func() { logCleanup() })

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .twinview/config.yaml or ~/.config/twinview/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("navigation.default_mode", defaults.Navigation.DefaultMode)
	viper.SetDefault("locator.registry_file", defaults.Locator.RegistryFile)
	viper.SetDefault("locator.watch", defaults.Locator.Watch)
	viper.SetDefault("locator.cache_ttl", defaults.Locator.CacheTTL)
	viper.SetDefault("locator.debounce", defaults.Locator.Debounce)
	viper.SetDefault("diagnostics.store_path", defaults.Diagnostics.StorePath)
	viper.SetDefault("diagnostics.retain_days", defaults.Diagnostics.RetainDays)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("simulator.load_latency", defaults.Simulator.LoadLatency)
	viper.SetDefault("simulator.bind_latency", defaults.Simulator.BindLatency)
	viper.SetDefault("simulator.open_animation", defaults.Simulator.OpenAnimation)
	viper.SetDefault("simulator.close_animation", defaults.Simulator.CloseAnimation)
	viper.SetDefault("simulator.console_on_load", defaults.Simulator.ConsoleOnLoad)
	viper.SetDefault("log.level", defaults.Log.Level)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .twinview/config.yaml (current directory)
		// 2. ~/.config/twinview/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			if dir := config.DefaultConfigDir(); dir != "" {
				viper.AddConfigPath(dir)
			}
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: decoding config: %v\n", err)
	}
}

// setupLogging opens the log file from config, or debug.log when --debug
// is set without one. The viewer shares the file with bubbletea's own log.
func setupLogging(viewer bool) error {
	path := cfg.Log.Path
	if path == "" && debugFlag {
		path = "debug.log"
	}
	if path == "" {
		log.SetEnabled(false)
		return nil
	}
	var (
		cleanup func()
		err     error
	)
	if viewer {
		cleanup, err = log.InitWithTeaLog(path, "twinview")
	} else {
		cleanup, err = log.Init(path)
	}
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	level := log.ParseLevel(cfg.Log.Level)
	if debugFlag {
		level = log.LevelDebug
	}
	log.SetMinLevel(level)
	log.Info(log.CatConfig, "config loaded", "file", viper.ConfigFileUsed())
	return nil
}

// configFileUsed is the file config writes go to.
func configFileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return localConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
