package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local environment for common sync-blocking problems",
	Long: `Verifies the output directory is writable, that source catalog credentials
are present, and that ffmpeg is available for the optional audio processor
(its absence is reported but does not fail the check, since the processor
degrades to a no-op without it).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.ExecuteDoctorCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(doctorCmd)
}
