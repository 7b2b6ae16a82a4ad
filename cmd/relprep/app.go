// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/notion-sync/relprep/internal/config"
	"github.com/notion-sync/relprep/internal/issue"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration and the repository through it.
	App struct {
		Config ConfigProvider
		Repos  RepositoryOpener
		stdout io.Writer
		stderr io.Writer

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Repos  RepositoryOpener
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration with its source path.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// RepositoryOpener opens the repository containing dir.
	RepositoryOpener func(backend vcs.Backend, dir string, opts vcs.Options) (vcs.Client, error)

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		verbose    bool
		configPath string
		dir        string
		remote     string
	}

	fileConfigProvider struct{}
)

// NewApp creates an App with production defaults for missing dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = fileConfigProvider{}
	}
	if deps.Repos == nil {
		deps.Repos = vcs.Open
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		Repos:  deps.Repos,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

func (fileConfigProvider) Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error) {
	return config.LoadWithSource(ctx, opts)
}

// workDir is the --dir flag, or "." when unset.
func (a *App) workDir() string {
	if a.flags.dir == "" {
		return "."
	}
	return a.flags.dir
}

// loadOptions builds the config load options from the persistent flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.flags.configPath),
		BaseDir:        types.FilesystemPath(a.workDir()),
	}
}

// loadConfig loads configuration, applies the --remote override and the
// configured verbosity and color scheme.
func (a *App) loadConfig(ctx context.Context) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if a.flags.remote != "" {
		remote := config.RemoteName(a.flags.remote)
		if err := remote.Validate(); err != nil {
			return nil, issue.WrapWithContext(err, "apply --remote", "")
		}
		loaded.Git.Remote = remote
	}
	if loaded.UI.Verbose && !a.flags.verbose {
		a.flags.verbose = true
		installLogger(a.stderr, true)
	}
	applyColorScheme(loaded.UI.ColorScheme)
	return loaded, nil
}

// openRepository opens the repository under --dir with the configured backend.
func (a *App) openRepository(cfg *config.Config) (vcs.Client, error) {
	return a.Repos(cfg.Git.Backend, a.workDir(), cfg.VCSOptions())
}
