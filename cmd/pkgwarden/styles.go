// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - the hex colors every styled line of CLI output is drawn from.
// They are picked for dark terminal backgrounds; lipgloss degrades them on
// terminals with fewer colors.
const (
	// ColorPrimary is purple - used for the root command banner, per-backend
	// titles in list output and table headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles, totals and table borders.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for the check mark after a completed
	// install or uninstall and for a running package in status output.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for the "Error:" header printed by the error
	// handler.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for interrupted commands, packages that are
	// not running and notes printed next to an error.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for package names and their versions.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles built from the palette. Callers render short fragments with
// them and compose the fragments into lines themselves.
var (
	// TitleStyle is for primary headers, such as "PIP packages" in list output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success marks and positive outcomes.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for the error header. It is bold so the header stands out
	// from the wrapped message that follows it.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings, the "Interrupted:" header and the cross
	// shown for a package that is not running.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// PackageStyle is for package references, e.g. "requests==2.31.0".
	PackageStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// Table styles for the list command (lipgloss/table).

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	// hintStyle is for inline remarks under a table, such as a backend whose
	// allow-list is not enforced.
	hintStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)
