package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nmartins/melodysync/internal/app"
)

//nolint:gochecknoglobals
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the configured source catalog credentials",
	Long: `Exchanges the configured client id/secret for a bearer token against the
source catalog's OAuth2 client-credentials endpoint, reporting whether
authentication succeeds. melodysync never performs a browser-based login:
credentials are read from the environment on every run (see "config show").`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteLoginCommand(cmd.Context(), rt)
	},
}

//nolint:gochecknoglobals
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Report that there is no persisted session to clear",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.ExecuteLogoutCommand(cmd.Context())
	},
}

//nolint:gochecknoglobals
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the configured credentials currently authenticate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt := app.NewRuntime(cmd.Context(), appConfig)
		return app.ExecuteStatusCommand(cmd.Context(), rt)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}
