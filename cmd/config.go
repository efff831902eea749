package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

//nolint:gochecknoglobals
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (secrets omitted)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.ExecuteConfigShowCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoglobals
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single configuration key in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return errors.New("key must not be empty")
		}

		return app.ExecuteConfigSetCommand(cmd.Context(), args[0], args[1])
	},
}

//nolint:gochecknoinits
func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
