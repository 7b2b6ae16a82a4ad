// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/notion-sync/relprep/internal/config"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/vcs/vcstest"
)

const testManifest = `[package]
name = "notion-sync"
version = "0.1.9"
edition = "2021"
`

type (
	staticConfig struct {
		cfg *config.Config
		err error
	}

	testApp struct {
		app    *App
		repo   *vcstest.Fake
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		opened []string
	}
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Loaded, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &config.Loaded{Config: &cfg}, nil
}

// newTestApp returns an App backed by a fake repository whose root holds a
// Cargo.toml declaring 0.1.9.
func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ta := &testApp{
		repo:   vcstest.New(dir),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.app = NewApp(Dependencies{
		Config: staticConfig{cfg: cfg},
		Repos: func(_ vcs.Backend, dir string, _ vcs.Options) (vcs.Client, error) {
			ta.opened = append(ta.opened, dir)
			return ta.repo, nil
		},
		Stdout: ta.stdout,
		Stderr: ta.stderr,
	})
	return ta
}

func (ta *testApp) run(t *testing.T, args ...string) error {
	t.Helper()

	if args == nil {
		args = []string{}
	}
	root := NewRootCommand(ta.app)
	root.SetArgs(args)
	root.SetOut(ta.stdout)
	root.SetErr(ta.stderr)
	return root.ExecuteContext(t.Context())
}

func (ta *testApp) manifest(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(ta.repo.Dir, "Cargo.toml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	return string(data)
}
