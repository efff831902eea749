package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals,lll
var downloadCmd = &cobra.Command{
	Use:   "download <playlist>",
	Short: "Mirror a playlist into the output directory for the first time",
	Long: `Downloads every track of <playlist> into a freshly created directory under
the configured output root, matching each one against the secondary catalog,
tagging the result, and writing a manifest. If a mirror already exists for
this playlist, download behaves exactly like "sync": only the difference is
executed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteDownloadCommand(cmd.Context(), rt, args[0])
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(downloadCmd)
}
