package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals,lll
var syncCmd = &cobra.Command{
	Use:   "sync <playlist>",
	Short: "Reconcile a local mirror against the playlist's current remote state",
	Long: `Fetches the playlist's current remote state, diffs it against the local
manifest ("tracklist.txt") if one exists, and downloads only what changed:
new tracks are added, tracks whose local file is missing or invalid are
re-downloaded, and moved tracks have their recorded position updated.
A track that was removed from the remote playlist is left on disk.

<playlist> accepts a raw id, a URL containing "/playlist/<id>", or a
"<scheme>:playlist:<id>" URI.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteSyncCommand(cmd.Context(), rt, args[0])
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(syncCmd)
}
