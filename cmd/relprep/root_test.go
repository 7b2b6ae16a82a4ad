// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/notion-sync/relprep/internal/config"
	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
	"github.com/notion-sync/relprep/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestNewRootCommand_Tree(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{}))

	for _, name := range []string{"push", "bake", "config"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err: %v)", name, err)
		}
	}
	for _, flag := range []string{"verbose", "config", "dir", "remote"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
	if root.Flags().Lookup("push") == nil {
		t.Error("flag --push missing")
	}
	if f := root.PersistentFlags().ShorthandLookup("C"); f == nil || f.Name != "dir" {
		t.Error("-C is not the shorthand of --dir")
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"nil", nil, types.ExitSuccess},
		{"plain error", errors.New("boom"), types.ExitFailure},
		{"exit error", &ExitError{Code: 3}, 3},
		{"wrapped exit error", errors.Join(errors.New("ctx"), &ExitError{Code: types.ExitFailure}), types.ExitFailure},
		{"out of range", &ExitError{Code: 300}, types.ExitFailure},
		{"zero code", &ExitError{Code: types.ExitSuccess, Err: errors.New("x")}, types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeOf(tt.err); got != tt.want {
				t.Errorf("exitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	if got := (&ExitError{Code: 1, Err: cause}).Error(); got != "cause" {
		t.Errorf("Error() = %q, want %q", got, "cause")
	}
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q, want %q", got, "exit status 2")
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError does not unwrap to its cause")
	}
}

func TestRootCommand_VersionCheckedBeforeRepository(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "missing version", args: []string{}, want: release.ErrUsage},
		{name: "malformed version", args: []string{"abc"}, want: version.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opened := 0
			app := NewApp(Dependencies{
				Config: staticConfig{cfg: config.DefaultConfig()},
				Repos: func(vcs.Backend, string, vcs.Options) (vcs.Client, error) {
					opened++
					return nil, vcs.ErrNotRepository
				},
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
			})
			root := NewRootCommand(app)
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})

			err := root.ExecuteContext(t.Context())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Execute(%v) error = %v, want %v", tt.args, err, tt.want)
			}
			if errors.Is(err, vcs.ErrNotRepository) {
				t.Errorf("Execute(%v) reached the repository: %v", tt.args, err)
			}
			if opened != 0 {
				t.Errorf("repository opened %d times, want 0", opened)
			}
		})
	}
}
