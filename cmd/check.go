package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var checkCmd = &cobra.Command{
	Use:   "check <playlist>",
	Short: "Preview what a sync run against <playlist> would do, without downloading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteCheckCommand(cmd.Context(), rt, args[0])
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(checkCmd)
}
