package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "Lyrics-related commands",
}

//nolint:gochecknoglobals
var lyricsDownloadCmd = &cobra.Command{
	Use:   "download <playlist>",
	Short: "Backfill lyrics for an already-synced playlist's tracks",
	Long: `Resolves and writes lyrics files for every track in <playlist>'s existing
mirror whose lyrics are not already downloaded or known instrumental. The
playlist must already have been synced at least once; this command does
not download audio.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteLyricsDownloadCommand(cmd.Context(), rt, args[0])
	},
}

//nolint:gochecknoinits
func init() {
	lyricsCmd.AddCommand(lyricsDownloadCmd)
	rootCmd.AddCommand(lyricsCmd)
}
