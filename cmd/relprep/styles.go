// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/notion-sync/relprep/internal/config"
)

// Palette shared by every command's output.
const (
	// ColorPrimary is purple, for titles.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray, for labels and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber, for hints and follow-up instructions.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue, for refs and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for field labels.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for the success marker.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failure markers.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for hints.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for ref names and shell commands.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for supplementary details.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	labelStyle = SubtitleStyle.Width(10)
)

// applyColorScheme tells lipgloss which background to assume. Auto keeps
// terminal detection.
func applyColorScheme(cs config.ColorScheme) {
	switch cs {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

// glamourStyle maps the configured color scheme onto a glamour style name.
func glamourStyle(cs config.ColorScheme) string {
	switch cs {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
