// Package cmd implements the CLI surface: cobra commands for login/logout/
// status, download, sync, check, list, lyrics download, config show/set,
// and doctor, all delegating to internal/app for the actual work.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/version"
)

var (
	// configFilenameFromFlag stores the config filename provided via command-line flag.
	//
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	// appConfig stores the application configuration loaded from file and flags.
	//
	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	// rootCmd is the main Cobra command for the application.
	//
	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "melodysync",
		Short: "Mirror a remote playlist to a local, tagged audio directory.",
		Long: `melodysync mirrors a remote-platform playlist to a local directory of
audio files enriched with metadata and optional lyrics.

It diffs the playlist's current remote state against a local manifest
("tracklist.txt") and performs only the work needed to bring the directory
back into agreement: new tracks are matched against a secondary catalog,
downloaded, tagged, and (optionally) given lyrics; tracks removed upstream
are left in place; tracks that moved position are reflected in the manifest.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command and returns the process exit code: 0 on
// success, 130 if interrupted, 1 on any other error.
func Execute() int {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer stop()

	defer func() {
		_ = logger.Logger().Sync() //nolint:errcheck // No need to check the error here, application will exit anyway.
	}()

	err := rootCmd.ExecuteContext(ctx)

	switch {
	case ctx.Err() != nil:
		return 130
	case err != nil:
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	default:
		return 0
	}
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	version.AttachCobraVersionCommand(rootCmd)

	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')", config.DefaultConfigFilename))

	rootCmd.PersistentFlags().StringP("output", "o", "", "output directory root for synced playlists")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output audio format: mp3, flac, or m4a")
	rootCmd.PersistentFlags().IntP("concurrency", "j", 0, "max number of tracks downloaded simultaneously")
	rootCmd.PersistentFlags().Bool("lyrics", false, "enable lyrics resolution for this run")
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)

	return nil
}

// bindFlagsToConfig overlays any persistent flags the caller explicitly set
// onto the loaded configuration before validating it.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		if cfg.OutputDirectory, err = flags.GetString("output"); err != nil {
			return fmt.Errorf("failed to get output value: %w", err)
		}
	}

	if flag := flags.Lookup("format"); flag != nil && flag.Changed {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return fmt.Errorf("failed to get format value: %w", err)
		}
	}

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return fmt.Errorf("failed to get concurrency value: %w", err)
		}
	}

	if flag := flags.Lookup("lyrics"); flag != nil && flag.Changed {
		if cfg.LyricsEnabled, err = flags.GetBool("lyrics"); err != nil {
			return fmt.Errorf("failed to get lyrics value: %w", err)
		}
	}

	return config.ValidateConfig(cfg)
}
