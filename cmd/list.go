package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every synced playlist under the configured output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteListCommand(cmd.Context(), rt)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(listCmd)
}
