// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/notion-sync/relprep/internal/version"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the relprep command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var push bool

	rootCmd := &cobra.Command{
		Use:   "relprep <version>",
		Short: "Prepare a release: bump the manifest, commit, branch and tag",
		Long: TitleStyle.Render("relprep") + SubtitleStyle.Render(" - release preparation for notion-sync") + `

relprep validates the version, refuses to run on a dirty working tree,
rewrites the version declaration in the package manifest, commits it as
"Release v<version>", and creates the branch and tag v<version> at that
commit. With --push both are published to the configured remote.

` + SubtitleStyle.Render("Examples:") + `
  relprep ` + version.Example + `               Prepare v` + version.Example + ` locally
  relprep ` + version.Example + ` --push        Prepare and publish v` + version.Example + `
  relprep push ` + version.Example + `          Publish an already prepared release
  relprep bake --release ` + version.Example + ` List the container image references`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			installLogger(app.stderr, app.flags.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			return runRelease(cmd.Context(), app, raw, push)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and detailed error help")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is ./relprep.cue, then the user config)")
	pf.StringVarP(&app.flags.dir, "dir", "C", "", "run as if started in this directory")
	pf.StringVar(&app.flags.remote, "remote", "", "remote to publish to (overrides git.remote)")

	rootCmd.Flags().BoolVar(&push, "push", false, "publish the release branch and tag after creating them")

	rootCmd.AddCommand(
		newPushCommand(app),
		newBakeCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// Execute runs the CLI and exits with the code carried by the returned error.
func Execute() {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}
