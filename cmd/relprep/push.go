// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/version"
)

func newPushCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "push <version>",
		Short: "Publish an already prepared release branch and tag",
		Long: `Push the current branch and the tag v<version> to the configured remote.

Use it to retry a failed --push, or to publish a release prepared without
--push. The tag must already exist locally.`,
		Example: "  relprep push " + version.Example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd.Context(), app, args[0])
		},
	}
}

func runPush(ctx context.Context, app *App, raw string) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(configError(err), glamourStyle(""))
	}
	style := glamourStyle(loaded.UI.ColorScheme)
	remote := loaded.Git.Remote.String()

	v, err := version.Parse(raw)
	if err != nil {
		return app.fail(classifyError("publish release", remote, version.Version{}, err), style)
	}

	client, err := app.openRepository(loaded.Config)
	if err != nil {
		return app.fail(classifyError("open repository", remote, v, err), style)
	}

	pushed, err := release.NewPublisher(client, remote).Republish(ctx, v)
	if err != nil {
		if len(pushed) > 0 {
			fmt.Fprintf(app.stderr, "%s already pushed to %s: %s\n", WarningStyle.Render("note:"), remote, shortNames(pushed))
		}
		return app.fail(classifyError("publish release", remote, v, err), style)
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), TitleStyle.Render("Published release "+v.Tag()))
	field(app.stdout, "pushed", shortNames(pushed)+" → "+remote)
	return nil
}
