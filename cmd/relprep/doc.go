// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the relprep CLI commands.
//
// The root command prepares a release (`relprep <version> [--push]`);
// subcommands publish an existing release, expand container image references
// and manage configuration. Command handlers receive an *App and never call
// os.Exit; the exit status travels as an *ExitError to Execute.
package cmd
