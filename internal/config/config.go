// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/notion-sync/relprep/internal/bake"
	"github.com/notion-sync/relprep/internal/cueutil"
	"github.com/notion-sync/relprep/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "relprep"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is the per-repository config file name.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RELPREP"
)

// ErrConfigExists is returned by WriteDefault when the target file exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema []byte

// bakeEnv binds the bake variables to the names the build system uses.
var bakeEnv = map[string]string{
	"bake.registry":   "REGISTRY",
	"bake.repository": "REPOSITORY",
	"bake.tags":       "TAGS",
}

// ConfigDir returns the relprep configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the user-level config file.
func UserConfigPath(opts LoadOptions) (string, error) {
	dir, err := configDirWithOverride(opts.ConfigDirPath.String())
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// ResolvePath returns the config file Load would read, or "" when only
// defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath.String()) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath.String()).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'relprep config init' to create a configuration file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath.String(), nil
	}

	local := filepath.Join(opts.BaseDir.String(), LocalConfigFile)
	if fileExists(local) {
		return local, nil
	}

	user, err := UserConfigPath(opts)
	if err != nil {
		return "", err
	}
	if fileExists(user) {
		return user, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	if err := bindEnv(v); err != nil {
		return nil, "", err
	}

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		slog.Debug("loading configuration", "path", path)
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'relprep config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Bake.Tags = bake.ParseTags(strings.Join(cfg.Bake.Tags, ","))

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check RELPREP_* and REGISTRY/REPOSITORY/TAGS environment overrides").
			Wrap(err).
			BuildError()
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("manifest.path", defaults.Manifest.Path.String())
	companions := make([]string, len(defaults.Manifest.Companions))
	for i, c := range defaults.Manifest.Companions {
		companions[i] = c.String()
	}
	v.SetDefault("manifest.companions", companions)
	v.SetDefault("git.backend", defaults.Git.Backend.String())
	v.SetDefault("git.remote", defaults.Git.Remote.String())
	v.SetDefault("git.annotated_tags", defaults.Git.AnnotatedTags)
	v.SetDefault("git.author.name", defaults.Git.Author.Name)
	v.SetDefault("git.author.email", defaults.Git.Author.Email)
	v.SetDefault("bake.registry", defaults.Bake.Registry)
	v.SetDefault("bake.repository", defaults.Bake.Repository)
	v.SetDefault("bake.tags", defaults.Bake.Tags)
	v.SetDefault("bake.platforms", defaults.Bake.Platforms)
	v.SetDefault("bake.target.name", defaults.Bake.Target.Name)
	v.SetDefault("bake.target.context", defaults.Bake.Target.Context)
	v.SetDefault("bake.target.dockerfile", defaults.Bake.Target.Dockerfile)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// bindEnv maps RELPREP_<SECTION>_<KEY> onto every key, and the bare build
// variable names onto the bake section. The prefixed name wins when both are set.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range bakeEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, name, err)
		}
	}
	return nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// relprep configuration\n")
	sb.WriteString("// Environment overrides: RELPREP_<SECTION>_<KEY>, REGISTRY, REPOSITORY, TAGS.\n\n")

	sb.WriteString("manifest: {\n")
	fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Manifest.Path)
	sb.WriteString("\tcompanions: [")
	for i, c := range cfg.Manifest.Companions {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", c)
	}
	sb.WriteString("]\n}\n")

	sb.WriteString("\ngit: {\n")
	fmt.Fprintf(&sb, "\tbackend: %q\n", cfg.Git.Backend)
	fmt.Fprintf(&sb, "\tremote: %q\n", cfg.Git.Remote)
	fmt.Fprintf(&sb, "\tannotated_tags: %v\n", cfg.Git.AnnotatedTags)
	if cfg.Git.Author.Name != "" || cfg.Git.Author.Email != "" {
		fmt.Fprintf(&sb, "\tauthor: {\n\t\tname: %q\n\t\temail: %q\n\t}\n", cfg.Git.Author.Name, cfg.Git.Author.Email)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nbake: {\n")
	fmt.Fprintf(&sb, "\tregistry: %q\n", cfg.Bake.Registry)
	fmt.Fprintf(&sb, "\trepository: %q\n", cfg.Bake.Repository)
	fmt.Fprintf(&sb, "\ttags: %s\n", cueList(cfg.Bake.Tags))
	fmt.Fprintf(&sb, "\tplatforms: %s\n", cueList(cfg.Bake.Platforms))
	sb.WriteString("\ttarget: {\n")
	fmt.Fprintf(&sb, "\t\tname: %q\n", cfg.Bake.Target.Name)
	fmt.Fprintf(&sb, "\t\tcontext: %q\n", cfg.Bake.Target.Context)
	fmt.Fprintf(&sb, "\t\tdockerfile: %q\n", cfg.Bake.Target.Dockerfile)
	sb.WriteString("\t}\n}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
