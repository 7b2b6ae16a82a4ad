// SPDX-License-Identifier: MPL-2.0

// Package bake expands release tags into container image references and
// renders the multi-platform build definition consumed by `docker buildx bake`.
package bake

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/notion-sync/relprep/internal/version"
)

const (
	// DefaultRegistry is the registry images are pushed to.
	DefaultRegistry = "ghcr.io"
	// DefaultRepository is the image repository inside the registry.
	DefaultRepository = "local/notion-sync"
	// DefaultTargetName names the single build target.
	DefaultTargetName = "notion-sync"
)

var (
	// DefaultTags is used when no tags are configured.
	DefaultTags = []string{"main"}
	// DefaultPlatforms lists the platforms built for every target.
	DefaultPlatforms = []string{"linux/amd64", "linux/arm64"}

	// ErrEmptyField is returned when a required configuration value is blank.
	ErrEmptyField = errors.New("required bake setting is empty")
)

type (
	// Template produces "<registry>/<repository>:<tag>" for each tag.
	Template struct {
		Registry   string
		Repository string
		Tags       []string
	}

	// Target is the build target declaration.
	Target struct {
		Name       string
		Context    string
		Dockerfile string
	}

	// Config is the whole build description input.
	Config struct {
		Registry   string
		Repository string
		Tags       []string
		Platforms  []string
		Target     Target
	}

	// EmptyFieldError names the blank setting.
	EmptyFieldError struct {
		Field string
	}

	// Definition is the JSON document understood by `docker buildx bake -f`.
	Definition struct {
		Variable map[string]Variable   `json:"variable"`
		Group    map[string]Group      `json:"group"`
		Target   map[string]TargetSpec `json:"target"`
	}

	// Variable is a bake variable with its default.
	Variable struct {
		Default string `json:"default"`
	}

	// Group lists targets built together.
	Group struct {
		Targets []string `json:"targets"`
	}

	// TargetSpec is one rendered bake target.
	TargetSpec struct {
		Context    string   `json:"context"`
		Dockerfile string   `json:"dockerfile"`
		Platforms  []string `json:"platforms"`
		Tags       []string `json:"tags"`
	}
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Registry:   DefaultRegistry,
		Repository: DefaultRepository,
		Tags:       slices.Clone(DefaultTags),
		Platforms:  slices.Clone(DefaultPlatforms),
		Target: Target{
			Name:       DefaultTargetName,
			Context:    ".",
			Dockerfile: "Dockerfile",
		},
	}
}

// Expand returns one fully-qualified reference per distinct tag, in input
// order. Tags are not validated.
func Expand(t Template) []string {
	refs := make([]string, 0, len(t.Tags))
	seen := make(map[string]struct{}, len(t.Tags))
	for _, tag := range t.Tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		refs = append(refs, t.Registry+"/"+t.Repository+":"+tag)
	}
	return refs
}

// ParseTags splits a comma separated TAGS value, dropping blanks.
func ParseTags(s string) []string {
	var tags []string
	for tag := range strings.SplitSeq(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Template returns the tag template described by c.
func (c Config) Template() Template {
	return Template{Registry: c.Registry, Repository: c.Repository, Tags: c.Tags}
}

// WithRelease returns a copy of c whose tags include the release tag of v.
func (c Config) WithRelease(v version.Version) Config {
	out := c.clone()
	if tag := v.Tag(); !slices.Contains(out.Tags, tag) {
		out.Tags = append(out.Tags, tag)
	}
	return out
}

// WithTags returns a copy of c with tags appended.
func (c Config) WithTags(tags ...string) Config {
	out := c.clone()
	out.Tags = append(out.Tags, tags...)
	return out
}

// Validate reports the first blank required setting.
func (c Config) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"registry", c.Registry},
		{"repository", c.Repository},
		{"target.name", c.Target.Name},
		{"target.context", c.Target.Context},
		{"target.dockerfile", c.Target.Dockerfile},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &EmptyFieldError{Field: f.name}
		}
	}
	if len(c.Platforms) == 0 {
		return &EmptyFieldError{Field: "platforms"}
	}
	return nil
}

// Definition renders c as a bake file. The REGISTRY, REPOSITORY and TAGS
// variables carry the configured values as defaults.
func (c Config) Definition() (Definition, error) {
	if err := c.Validate(); err != nil {
		return Definition{}, err
	}
	return Definition{
		Variable: map[string]Variable{
			"REGISTRY":   {Default: c.Registry},
			"REPOSITORY": {Default: c.Repository},
			"TAGS":       {Default: strings.Join(c.Tags, ",")},
		},
		Group: map[string]Group{
			"default": {Targets: []string{c.Target.Name}},
		},
		Target: map[string]TargetSpec{
			c.Target.Name: {
				Context:    c.Target.Context,
				Dockerfile: c.Target.Dockerfile,
				Platforms:  slices.Clone(c.Platforms),
				Tags:       Expand(c.Template()),
			},
		},
	}, nil
}

// MarshalIndent renders the definition as indented JSON with a trailing newline.
func (d Definition) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode bake definition: %w", err)
	}
	return append(data, '\n'), nil
}

func (c Config) clone() Config {
	out := c
	out.Tags = slices.Clone(c.Tags)
	out.Platforms = slices.Clone(c.Platforms)
	return out
}

// Error implements the error interface.
func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("bake %s must not be empty", e.Field)
}

// Unwrap returns ErrEmptyField for errors.Is() compatibility.
func (e *EmptyFieldError) Unwrap() error { return ErrEmptyField }
