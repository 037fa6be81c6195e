package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/bookfinder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and modify bookfinder configuration.

Configuration is stored in ~/.config/bookfinder/config.yaml. Every key
can also be set from the environment, e.g. BOOKFINDER_CATALOG_API_KEY.

Examples:
  bookfinder config get catalog.base_url
  bookfinder config set catalog.api_key YOUR_API_KEY
  bookfinder config set network.read_timeout 30s`,
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := config.GetValue(key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Set a configuration value",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to set config: %w", err)
		}

		out := cmd.OutOrStdout()
		Successf(out, "Set %s = %s", key, value)
		fmt.Fprintf(out, "Config saved to: %s\n", config.ConfigFile())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", config.GetConfigPath())
		fmt.Fprintf(out, "Log file:    %s\n", config.GetLogPath())
		fmt.Fprintf(out, "Config dir:  %s\n", config.GetConfigDir())
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
