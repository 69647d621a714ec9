// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for CLI command output.
//
// Commands import these instead of defining their own so output stays
// visually consistent. Colors honor NO_COLOR, FORCE_COLOR, and TTY
// detection through the profile set in init.

package cli

import (
	"github.com/charmbracelet/lipgloss"
)

func init() { lipgloss.SetColorProfile(colorProfile()) }

// =============================================================================
// SHARED STYLES
// =============================================================================

// One style per output role. ANSI-256 color numbers, not the TUI
// palette: CLI output renders in contexts the adaptive detection
// cannot see (pipes, scripts, CI).
var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	SectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).MarginTop(1)
	LabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	ValueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	SuccessStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	SeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	InfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// RenderLabel renders a field label at the shared 20-column width.
func RenderLabel(label string) string { return LabelStyle.Render(label) }
