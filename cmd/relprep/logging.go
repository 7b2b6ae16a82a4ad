// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns the charm logger used as the slog handler. Debug output
// from the release steps only shows with verbose set.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "relprep",
		Level:  level,
	})
}

// installLogger makes the charm logger the process-wide slog default.
func installLogger(w io.Writer, verbose bool) {
	slog.SetDefault(slog.New(newLogger(w, verbose)))
}
