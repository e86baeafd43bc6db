// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles for command output. Colors assume a dark background.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	SubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	// SuccessStyle marks committed runs and artifacts that are up to date.
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	// WarningStyle marks pending version changes.
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))

	// CmdStyle highlights artifact keys and file paths.
	CmdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
)
