package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/twinview/internal/config"
)

var setConfigCmd = &cobra.Command{
	Use:   "set-config key value",
	Short: "Set one key in the active config file",
	Long: `Set a dotted key in the config file in use (--config, then
.twinview/config.yaml, then ~/.config/twinview/config.yaml). Other keys
and their comments are left as they are.

Examples:
  twinview set-config navigation.use_navigable true
  twinview set-config simulator.load_latency 200ms`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFileUsed()
		if err := config.SetValue(path, args[0], parseValue(args[1])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "set %s in %s\n", args[0], path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setConfigCmd)
}
