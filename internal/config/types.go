// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/notion-sync/relprep/internal/bake"
	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRemoteName is returned when a RemoteName is empty or contains whitespace.
	ErrInvalidRemoteName = errors.New("invalid remote name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RemoteName names a git remote.
	RemoteName string

	// InvalidRemoteNameError is returned when a RemoteName is not usable.
	InvalidRemoteNameError struct {
		Value RemoteName
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Manifest selects the file a release rewrites.
		Manifest ManifestConfig `json:"manifest" mapstructure:"manifest"`
		// Git configures repository access.
		Git GitConfig `json:"git" mapstructure:"git"`
		// Bake configures image reference expansion.
		Bake BakeConfig `json:"bake" mapstructure:"bake"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ManifestConfig locates the version manifest.
	ManifestConfig struct {
		Path       types.FilesystemPath   `json:"path" mapstructure:"path"`
		Companions []types.FilesystemPath `json:"companions" mapstructure:"companions"`
	}

	// GitConfig configures repository access and ref creation.
	GitConfig struct {
		Backend       vcs.Backend  `json:"backend" mapstructure:"backend"`
		Remote        RemoteName   `json:"remote" mapstructure:"remote"`
		AnnotatedTags bool         `json:"annotated_tags" mapstructure:"annotated_tags"`
		Author        AuthorConfig `json:"author" mapstructure:"author"`
	}

	// AuthorConfig overrides the commit and tag identity. Empty values defer
	// to the repository and global git configuration.
	AuthorConfig struct {
		Name  string `json:"name" mapstructure:"name"`
		Email string `json:"email" mapstructure:"email"`
	}

	// BakeConfig mirrors bake.Config.
	BakeConfig struct {
		Registry   string           `json:"registry" mapstructure:"registry"`
		Repository string           `json:"repository" mapstructure:"repository"`
		Tags       []string         `json:"tags" mapstructure:"tags"`
		Platforms  []string         `json:"platforms" mapstructure:"platforms"`
		Target     BakeTargetConfig `json:"target" mapstructure:"target"`
	}

	// BakeTargetConfig declares the build target.
	BakeTargetConfig struct {
		Name       string `json:"name" mapstructure:"name"`
		Context    string `json:"context" mapstructure:"context"`
		Dockerfile string `json:"dockerfile" mapstructure:"dockerfile"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and detailed error help
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	b := bake.DefaultConfig()
	return &Config{
		Manifest: ManifestConfig{
			Path:       release.DefaultManifestPath,
			Companions: []types.FilesystemPath{"Cargo.lock"},
		},
		Git: GitConfig{
			Backend:       vcs.BackendAuto,
			Remote:        vcs.DefaultRemote,
			AnnotatedTags: true,
		},
		Bake: BakeConfig{
			Registry:   b.Registry,
			Repository: b.Repository,
			Tags:       b.Tags,
			Platforms:  b.Platforms,
			Target: BakeTargetConfig{
				Name:       b.Target.Name,
				Context:    b.Target.Context,
				Dockerfile: b.Target.Dockerfile,
			},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate checks the fields CUE cannot see once environment overrides
// have been applied.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Manifest.Path.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("manifest.path: %w", err))
	}
	for i, companion := range c.Manifest.Companions {
		if err := companion.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("manifest.companions[%d]: %w", i, err))
		}
	}
	if err := c.Git.Backend.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("git.backend: %w", err))
	}
	if err := c.Git.Remote.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("git.remote: %w", err))
	}
	if err := c.BakeConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// ReleaseSettings returns the settings the release flow runs with.
func (c *Config) ReleaseSettings() release.Settings {
	companions := make([]string, len(c.Manifest.Companions))
	for i, p := range c.Manifest.Companions {
		companions[i] = p.String()
	}
	return release.Settings{
		ManifestPath:  c.Manifest.Path.String(),
		Companions:    companions,
		Remote:        c.Git.Remote.String(),
		AnnotatedTags: c.Git.AnnotatedTags,
	}
}

// VCSOptions returns the repository client options. A blank author leaves
// identity to git configuration.
func (c *Config) VCSOptions() vcs.Options {
	if c.Git.Author.Name == "" && c.Git.Author.Email == "" {
		return vcs.Options{}
	}
	return vcs.Options{Signature: &vcs.Signature{Name: c.Git.Author.Name, Email: c.Git.Author.Email}}
}

// BakeConfig returns the bake section as a bake.Config.
func (c *Config) BakeConfig() bake.Config {
	return bake.Config{
		Registry:   c.Bake.Registry,
		Repository: c.Bake.Repository,
		Tags:       slices.Clone(c.Bake.Tags),
		Platforms:  slices.Clone(c.Bake.Platforms),
		Target: bake.Target{
			Name:       c.Bake.Target.Name,
			Context:    c.Bake.Target.Context,
			Dockerfile: c.Bake.Target.Dockerfile,
		},
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the RemoteName.
func (r RemoteName) String() string { return string(r) }

// Validate returns an error if the remote name is empty or contains whitespace.
func (r RemoteName) Validate() error {
	if r == "" || strings.ContainsFunc(string(r), func(c rune) bool { return c == ' ' || c == '\t' || c == '\n' }) {
		return &InvalidRemoteNameError{Value: r}
	}
	return nil
}

// Error implements the error interface for InvalidRemoteNameError.
func (e *InvalidRemoteNameError) Error() string {
	return fmt.Sprintf("invalid remote name %q", e.Value)
}

// Unwrap returns ErrInvalidRemoteName for errors.Is() compatibility.
func (e *InvalidRemoteNameError) Unwrap() error { return ErrInvalidRemoteName }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns nil if the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}
