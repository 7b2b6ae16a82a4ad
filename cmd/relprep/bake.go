// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notion-sync/relprep/internal/bake"
	"github.com/notion-sync/relprep/internal/issue"
	"github.com/notion-sync/relprep/internal/version"
)

const (
	bakeFormatList = "list"
	bakeFormatJSON = "json"
)

type bakeOptions struct {
	release string
	tags    []string
	format  string
}

func newBakeCommand(app *App) *cobra.Command {
	opts := bakeOptions{}

	cmd := &cobra.Command{
		Use:   "bake",
		Short: "Expand the container image references for a build",
		Long: `Expand registry/repository:tag for every configured tag.

The registry, repository and tags come from the bake section of the
configuration and may be overridden with the REGISTRY, REPOSITORY and TAGS
environment variables. --release adds the v<version> tag; --tag replaces the
tag list. With --format json the full bake definition is printed.`,
		Example: `  relprep bake
  relprep bake --release ` + version.Example + `
  TAGS=main,edge relprep bake --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBake(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.release, "release", "", "add the v<version> tag for this release")
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "tag to expand (repeatable, replaces the configured tags)")
	cmd.Flags().StringVar(&opts.format, "format", bakeFormatList, "output format: list or json")

	return cmd
}

func runBake(ctx context.Context, app *App, opts bakeOptions) error {
	if opts.format != bakeFormatList && opts.format != bakeFormatJSON {
		return app.fail(newServiceError(
			issue.NewErrorContext().
				WithOperation("expand image references").
				WithSuggestion("Use --format list or --format json").
				Wrap(fmt.Errorf("unknown format %q", opts.format)).
				Build(),
			0, ""), glamourStyle(""))
	}

	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(configError(err), glamourStyle(""))
	}
	style := glamourStyle(loaded.UI.ColorScheme)

	cfg := loaded.BakeConfig()
	if tags := bake.ParseTags(strings.Join(opts.tags, ",")); len(tags) > 0 {
		cfg.Tags = nil
		cfg = cfg.WithTags(tags...)
	}
	if opts.release != "" {
		v, err := version.Parse(opts.release)
		if err != nil {
			return app.fail(classifyError("expand image references", "", version.Version{}, err), style)
		}
		cfg = cfg.WithRelease(v)
	}

	if opts.format == bakeFormatJSON {
		def, err := cfg.Definition()
		if err != nil {
			return app.fail(classifyError("build bake definition", "", version.Version{}, err), style)
		}
		out, err := def.MarshalIndent()
		if err != nil {
			return app.fail(classifyError("encode bake definition", "", version.Version{}, err), style)
		}
		_, err = app.stdout.Write(out)
		return err
	}

	if err := cfg.Validate(); err != nil {
		return app.fail(classifyError("expand image references", "", version.Version{}, err), style)
	}
	for _, ref := range bake.Expand(cfg.Template()) {
		fmt.Fprintln(app.stdout, ref)
	}
	return nil
}
