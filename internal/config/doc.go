// SPDX-License-Identifier: MPL-2.0

// Package config loads relprep settings with Viper, using CUE as the file format.
//
// Sources, highest precedence first: environment variables (RELPREP_* for
// every key, plus REGISTRY, REPOSITORY and TAGS for the bake section), the
// file named by --config, ./relprep.cue in the repository, config.cue in the
// user configuration directory, and built-in defaults. Files are validated
// against the embedded #Config schema (config_schema.cue).
package config
