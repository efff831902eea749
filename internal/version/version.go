// Package version exposes build-time version metadata and a cobra subcommand to print it.
package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// These are overridden at build time via -ldflags.
var (
	// Version is the semantic version of the binary.
	Version = "0.0.0-dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// BuildTime is when the binary was built, in RFC3339.
	BuildTime = "unknown"
)

// Short returns the semantic version string.
func Short() string {
	return Version
}

// Full returns version, commit, and build time joined into a single line.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// AttachCobraVersionCommand registers a "version" subcommand on the given root command.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
