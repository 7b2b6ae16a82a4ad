// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
	"github.com/notion-sync/relprep/pkg/types"
)

// runRelease prepares the release named by raw and prints its summary.
func runRelease(ctx context.Context, app *App, raw string, push bool) error {
	req := release.Request{Version: raw, Push: push}
	if _, err := req.Validate(); err != nil {
		return app.fail(classifyError("prepare release", "", version.Version{}, err), glamourStyle(""))
	}

	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(configError(err), glamourStyle(""))
	}
	style := glamourStyle(loaded.UI.ColorScheme)

	client, err := app.openRepository(loaded.Config)
	if err != nil {
		return app.fail(classifyError("open repository", loaded.Git.Remote.String(), version.Version{}, err), style)
	}

	releaser := release.New(client, loaded.ReleaseSettings())
	res, err := releaser.Prepare(ctx, req)
	if err != nil {
		renderPartial(app.stderr, res)
		return app.fail(classifyError("prepare release", res.Remote, res.Version, err), style)
	}

	renderSummary(app.stdout, res, push)
	return nil
}

// fail prints the service error and converts it to an exit error.
func (a *App) fail(svcErr *ServiceError, style string) error {
	renderServiceError(a.stderr, svcErr, a.flags.verbose, style)
	return &ExitError{Code: types.ExitFailure, Err: svcErr}
}

// renderSummary prints what a successful run created.
func renderSummary(w io.Writer, res *release.Result, pushed bool) {
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), TitleStyle.Render("Prepared release "+res.Version.Tag()))
	if res.Manifest != nil {
		field(w, "manifest", fmt.Sprintf("%s:%d %s → %s", res.Manifest.Path, res.Manifest.Line, res.Manifest.Previous, res.Manifest.Current))
	}
	field(w, "commit", res.Commit)
	field(w, "branch", CmdStyle.Render(res.Branch.Short()))
	field(w, "tag", CmdStyle.Render(res.Tag.Short()))

	if pushed {
		field(w, "pushed", shortNames(res.Pushed)+" → "+res.Remote)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, WarningStyle.Render("Nothing was pushed. To publish the release run:"))
	fmt.Fprintln(w, "  "+CmdStyle.Render(release.FollowUpCommand(res.Remote, res.Version)))
	fmt.Fprintln(w, SubtitleStyle.Render("or")+"\n  "+CmdStyle.Render("relprep push "+res.Version.String()))
}

// renderPartial notes local refs a failed run already created, so the user
// knows whether a publish-only retry applies.
func renderPartial(w io.Writer, res *release.Result) {
	if res == nil || res.State < release.StateTagged {
		return
	}
	fmt.Fprintf(w, "%s %s and %s were created locally at %s\n",
		WarningStyle.Render("note:"), CmdStyle.Render(res.Branch.Short()), CmdStyle.Render(res.Tag.Short()), res.Commit)
	if len(res.Pushed) > 0 {
		fmt.Fprintf(w, "%s already pushed to %s: %s\n", WarningStyle.Render("note:"), res.Remote, shortNames(res.Pushed))
	}
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s%s\n", labelStyle.Render(label), value)
}

func shortNames(specs []vcs.RefSpec) string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Dst.Short()
	}
	return strings.Join(names, ", ")
}
