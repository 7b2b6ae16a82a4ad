// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notion-sync/relprep/internal/config"
	"github.com/notion-sync/relprep/internal/issue"
)

// newConfigCommand creates the `relprep config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage relprep configuration",
		Long: `Manage relprep configuration.

Configuration is read from the first of:
  - the file given with --config
  - ` + config.LocalConfigFile + ` in the repository (or --dir)
  - the user config: ~/.config/relprep/config.cue on Linux,
    ~/Library/Application Support/relprep/config.cue on macOS,
    %APPDATA%\relprep\config.cue on Windows

Every key can be overridden with RELPREP_<SECTION>_<KEY>; the bake
variables also honor REGISTRY, REPOSITORY and TAGS.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which configuration file is used",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return showConfigPath(app)
		},
	})

	var user, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to ` + config.LocalConfigFile + ` in the repository,
or to the user config file with --user.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app, user, force)
		},
	}
	initCmd.Flags().BoolVar(&user, "user", false, "write the user config file instead of "+config.LocalConfigFile)
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(configError(err), glamourStyle(""))
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(configError(err), glamourStyle(""))
	}
	cfg := loaded.Config
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	companions := make([]string, len(cfg.Manifest.Companions))
	for i, c := range cfg.Manifest.Companions {
		companions[i] = c.String()
	}
	author := SubtitleStyle.Render("(from git config)")
	if cfg.Git.Author.Name != "" || cfg.Git.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", cfg.Git.Author.Name, cfg.Git.Author.Email)
	}

	for _, kv := range []struct{ key, value string }{
		{"manifest.path", cfg.Manifest.Path.String()},
		{"manifest.companions", strings.Join(companions, ", ")},
		{"git.backend", cfg.Git.Backend.String()},
		{"git.remote", cfg.Git.Remote.String()},
		{"git.annotated_tags", fmt.Sprint(cfg.Git.AnnotatedTags)},
		{"git.author", author},
		{"bake.registry", cfg.Bake.Registry},
		{"bake.repository", cfg.Bake.Repository},
		{"bake.tags", strings.Join(cfg.Bake.Tags, ", ")},
		{"bake.platforms", strings.Join(cfg.Bake.Platforms, ", ")},
		{"bake.target", fmt.Sprintf("%s (context %s, dockerfile %s)", cfg.Bake.Target.Name, cfg.Bake.Target.Context, cfg.Bake.Target.Dockerfile)},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
		{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
	} {
		printSetting(w, kv.key, kv.value)
	}
	return nil
}

func printSetting(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(key), SuccessStyle.Render(value))
}

func showConfigPath(app *App) error {
	path, err := config.ResolvePath(app.loadOptions())
	if err != nil {
		return app.fail(configError(err), glamourStyle(""))
	}
	if path == "" {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(using defaults)"))
		return nil
	}
	fmt.Fprintln(app.stdout, path)
	return nil
}

func initConfig(app *App, user, force bool) error {
	path := filepath.Join(app.workDir(), config.LocalConfigFile)
	if user {
		p, err := config.UserConfigPath(app.loadOptions())
		if err != nil {
			return app.fail(configError(err), glamourStyle(""))
		}
		path = p
	}

	if err := config.WriteDefault(path, force); err != nil {
		ec := issue.NewErrorContext().WithOperation("write configuration").Wrap(err)
		if errors.Is(err, config.ErrConfigExists) {
			ec.WithSuggestion("Pass --force to overwrite the existing file")
		}
		ae := ec.Build()
		return app.fail(newServiceError(ae, issue.ConfigLoadFailedId, formatHints(ae)), glamourStyle(""))
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), "Wrote "+path)
	return nil
}
