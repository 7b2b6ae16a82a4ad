// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/notion-sync/relprep/pkg/types"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath types.FilesystemPath
		// ConfigDirPath overrides the user config directory lookup when set.
		ConfigDirPath types.FilesystemPath
		// BaseDir is searched for relprep.cue. Empty means the working directory.
		BaseDir types.FilesystemPath
	}

	// InvalidLoadOptionsError collects field-level validation errors.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// Loaded is a configuration together with the file it came from.
	Loaded struct {
		*Config
		// Path is the file read, or "" when only defaults and environment apply.
		Path string
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	loaded, err := LoadWithSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// LoadWithSource loads configuration and reports which file supplied it.
func LoadWithSource(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}

// Validate checks that every non-empty path is usable. Empty paths mean "not set".
func (o LoadOptions) Validate() error {
	var errs []error
	for name, p := range map[string]types.FilesystemPath{
		"config file": o.ConfigFilePath,
		"config dir":  o.ConfigDirPath,
		"base dir":    o.BaseDir,
	} {
		if p == "" {
			continue
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidLoadOptionsError.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }
