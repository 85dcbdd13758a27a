package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/twinview/internal/config"
	"github.com/zjrosen/twinview/internal/locator"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a default config file",
	Long: `Write the default config, with comments, to path (default:
~/.config/twinview/config.yaml). --set overrides single keys after the
template is written; --registry also writes a sample view registry.

Examples:
  twinview init-config
  twinview init-config .twinview/config.yaml --registry
  twinview init-config --set navigation.max_consecutive_crashes=3 --set diagnostics.enabled=true`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitConfig,
}

var (
	initSets     []string
	initRegistry bool
	initForce    bool
)

func init() {
	initConfigCmd.Flags().StringArrayVar(&initSets, "set", nil, "key=value override (repeatable)")
	initConfigCmd.Flags().BoolVar(&initRegistry, "registry", false, "also write a sample view registry next to the config")
	initConfigCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := filepath.Join(config.DefaultConfigDir(), "config.yaml")
	if len(args) == 1 {
		path = args[0]
	}

	overrides := make([][2]string, 0, len(initSets))
	for _, s := range initSets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return fmt.Errorf("--set expects key=value, got %q", s)
		}
		overrides = append(overrides, [2]string{key, value})
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}

	if initRegistry {
		registry := filepath.Join(filepath.Dir(path), "views.yaml")
		if err := locator.WriteEntries(registry, builtinViews); err != nil {
			return err
		}
		overrides = append(overrides, [2]string{"locator.registry_file", registry})
		fmt.Fprintf(cmd.OutOrStdout(), "wrote view registry %s\n", registry)
	}

	for _, o := range overrides {
		if err := config.SetValue(path, o[0], parseValue(o[1])); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote config %s\n", path)
	return nil
}

// parseValue types a --set value: numbers and bools stay unquoted in YAML.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
