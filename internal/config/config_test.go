// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/notion-sync/relprep/internal/issue"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/pkg/types"
)

// isolated returns options that see neither the user's config nor a repository file.
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
		BaseDir:       types.FilesystemPath(t.TempDir()),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Manifest.Path != "Cargo.toml" {
		t.Errorf("Manifest.Path = %q", cfg.Manifest.Path)
	}
	if !slices.Equal(cfg.Manifest.Companions, []types.FilesystemPath{"Cargo.lock"}) {
		t.Errorf("Manifest.Companions = %v", cfg.Manifest.Companions)
	}
	if cfg.Git.Backend != vcs.BackendAuto || cfg.Git.Remote != "origin" || !cfg.Git.AnnotatedTags {
		t.Errorf("Git = %+v", cfg.Git)
	}
	if cfg.Bake.Registry != "ghcr.io" || cfg.Bake.Repository != "local/notion-sync" {
		t.Errorf("Bake = %+v", cfg.Bake)
	}
	if !slices.Equal(cfg.Bake.Tags, []string{"main"}) {
		t.Errorf("Bake.Tags = %v", cfg.Bake.Tags)
	}
	if !slices.Equal(cfg.Bake.Platforms, []string{"linux/amd64", "linux/arm64"}) {
		t.Errorf("Bake.Platforms = %v", cfg.Bake.Platforms)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	Reset()
	got, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() after Reset error: %v", err)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("ConfigDir() = %q, want a %s directory", got, AppName)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	loaded, err := LoadWithSource(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("LoadWithSource() error: %v", err)
	}
	if loaded.Path != "" {
		t.Errorf("Path = %q, want none", loaded.Path)
	}
	if !reflect.DeepEqual(loaded.Config, DefaultConfig()) {
		t.Errorf("Config = %+v, want defaults", loaded.Config)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	userPath := filepath.Join(opts.ConfigDirPath.String(), "config.cue")
	localPath := filepath.Join(opts.BaseDir.String(), LocalConfigFile)

	writeFile(t, userPath, `git: remote: "user"`+"\n"+`bake: registry: "registry.example.com"`+"\n")

	loaded, err := LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSource() error: %v", err)
	}
	if loaded.Path != userPath || loaded.Git.Remote != "user" {
		t.Errorf("user file not used: path=%q remote=%q", loaded.Path, loaded.Git.Remote)
	}

	writeFile(t, localPath, `git: remote: "local"`+"\n")
	loaded, err = LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSource() error: %v", err)
	}
	if loaded.Path != localPath || loaded.Git.Remote != "local" {
		t.Errorf("repository file not preferred: path=%q remote=%q", loaded.Path, loaded.Git.Remote)
	}
	if loaded.Bake.Registry != "ghcr.io" {
		t.Errorf("files must not merge: registry = %q", loaded.Bake.Registry)
	}
	if loaded.Manifest.Path != "Cargo.toml" {
		t.Errorf("unset keys keep defaults: manifest.path = %q", loaded.Manifest.Path)
	}

	explicit := filepath.Join(t.TempDir(), "release.cue")
	writeFile(t, explicit, `manifest: {path: "crates/sync/Cargo.toml", companions: []}`+"\n")
	opts.ConfigFilePath = types.FilesystemPath(explicit)
	loaded, err = LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSource() error: %v", err)
	}
	if loaded.Path != explicit || loaded.Manifest.Path != "crates/sync/Cargo.toml" || len(loaded.Manifest.Companions) != 0 {
		t.Errorf("explicit file not used: %+v from %q", loaded.Manifest, loaded.Path)
	}
	if loaded.Git.Remote != "origin" {
		t.Errorf("explicit file is exclusive: remote = %q", loaded.Git.Remote)
	}
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeFile(t, filepath.Join(opts.BaseDir.String(), LocalConfigFile), `
manifest: {
	path: "Cargo.toml"
	companions: ["Cargo.lock", "CHANGELOG.md"]
}
git: {
	backend: "go-git"
	remote: "upstream"
	annotated_tags: false
	author: {name: "Release Bot", email: "bot@example.com"}
}
bake: {
	registry: "docker.io"
	repository: "acme/notion-sync"
	tags: ["edge", "main"]
	platforms: ["linux/amd64"]
	target: {name: "app", context: "./docker", dockerfile: "Containerfile"}
}
ui: {color_scheme: "dark", verbose: true}
`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	settings := cfg.ReleaseSettings()
	if !slices.Equal(settings.Companions, []string{"Cargo.lock", "CHANGELOG.md"}) || settings.AnnotatedTags || settings.Remote != "upstream" {
		t.Errorf("ReleaseSettings() = %+v", settings)
	}
	if cfg.Git.Backend != vcs.BackendGoGit {
		t.Errorf("Backend = %q", cfg.Git.Backend)
	}
	sig := cfg.VCSOptions().Signature
	if sig == nil || sig.Name != "Release Bot" || sig.Email != "bot@example.com" {
		t.Errorf("Signature = %+v", sig)
	}

	b := cfg.BakeConfig()
	if b.Registry != "docker.io" || b.Repository != "acme/notion-sync" || b.Target.Name != "app" || b.Target.Dockerfile != "Containerfile" {
		t.Errorf("BakeConfig() = %+v", b)
	}
	if !slices.Equal(b.Tags, []string{"edge", "main"}) || !slices.Equal(b.Platforms, []string{"linux/amd64"}) {
		t.Errorf("BakeConfig() lists = %v, %v", b.Tags, b.Platforms)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || !cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `git: {remote: "origin"`, LocalConfigFile},
		{"unknown backend", `git: backend: "svn"`, "git.backend"},
		{"unknown field", `release: branch: "main"`, "release"},
		{"bad platform", `bake: platforms: ["amd64"]`, "bake.platforms[0]"},
		{"bad email", `git: author: email: "not-an-email"`, "git.author.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolated(t)
			writeFile(t, filepath.Join(opts.BaseDir.String(), LocalConfigFile), tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			var actionable *issue.ActionableError
			if !errors.As(err, &actionable) {
				t.Fatalf("error is %T, want *issue.ActionableError", err)
			}
			if actionable.Operation != "load configuration" {
				t.Errorf("Operation = %q", actionable.Operation)
			}
			if !strings.Contains(err.Error(), tt.want) && !strings.Contains(actionable.Cause.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = types.FilesystemPath(filepath.Join(t.TempDir(), "missing.cue"))

	_, err := NewProvider().Load(context.Background(), opts)
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
	}
	if len(actionable.Suggestions) == 0 {
		t.Error("missing suggestions")
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, isolated(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("REGISTRY", "quay.io")
	t.Setenv("REPOSITORY", "acme/sync")
	t.Setenv("TAGS", "main, v0.2.0,")
	t.Setenv("RELPREP_GIT_REMOTE", "upstream")
	t.Setenv("RELPREP_GIT_ANNOTATED_TAGS", "false")
	t.Setenv("RELPREP_MANIFEST_PATH", "crates/sync/Cargo.toml")

	opts := isolated(t)
	writeFile(t, filepath.Join(opts.BaseDir.String(), LocalConfigFile), `bake: registry: "docker.io"`+"\n")

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bake.Registry != "quay.io" || cfg.Bake.Repository != "acme/sync" {
		t.Errorf("Bake = %+v", cfg.Bake)
	}
	if !slices.Equal(cfg.Bake.Tags, []string{"main", "v0.2.0"}) {
		t.Errorf("Bake.Tags = %q", cfg.Bake.Tags)
	}
	if cfg.Git.Remote != "upstream" || cfg.Git.AnnotatedTags {
		t.Errorf("Git = %+v", cfg.Git)
	}
	if cfg.Manifest.Path != "crates/sync/Cargo.toml" {
		t.Errorf("Manifest.Path = %q", cfg.Manifest.Path)
	}
}

func TestLoad_PrefixedBakeVariableWins(t *testing.T) {
	t.Setenv("REGISTRY", "quay.io")
	t.Setenv("RELPREP_BAKE_REGISTRY", "registry.example.com")

	cfg, err := NewProvider().Load(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bake.Registry != "registry.example.com" {
		t.Errorf("Bake.Registry = %q", cfg.Bake.Registry)
	}
}

func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	t.Setenv("RELPREP_GIT_BACKEND", "svn")

	_, err := NewProvider().Load(context.Background(), isolated(t))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, vcs.ErrInvalidBackend) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig wrapping ErrInvalidBackend", err)
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	path := filepath.Join(opts.BaseDir.String(), LocalConfigFile)

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if err := WriteDefault(path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second WriteDefault() error = %v, want ErrConfigExists", err)
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("forced WriteDefault() error: %v", err)
	}

	loaded, err := LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loaded.Path != path {
		t.Errorf("Path = %q, want %q", loaded.Path, path)
	}
	if !reflect.DeepEqual(loaded.Config, DefaultConfig()) {
		t.Errorf("round trip = %+v, want defaults", loaded.Config)
	}
}

func TestGenerateCUE_Author(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Git.Author = AuthorConfig{Name: "Release Bot", Email: "bot@example.com"}
	out := GenerateCUE(cfg)
	if !strings.Contains(out, `email: "bot@example.com"`) {
		t.Errorf("GenerateCUE() missing author:\n%s", out)
	}
	if strings.Contains(GenerateCUE(DefaultConfig()), "author") {
		t.Error("blank author should be omitted")
	}
}
