// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for aide TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme carries every Lip Gloss style the TUI components render with.
// Styles resolve against the light or dark palette side chosen at
// construction, so components never branch on background themselves.
type Theme struct {
	// IsDark records which palette side the constructor resolved.
	IsDark bool

	// Sidebar pane.
	Sidebar           lipgloss.Style
	SidebarFocused    lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarPreview    lipgloss.Style
	SidebarTime       lipgloss.Style

	// Composer.
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style

	// Status bar.
	ConnOnline   lipgloss.Style
	ConnOffline  lipgloss.Style
	SendPending  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Confirmation prompt.
	ConfirmBox          lipgloss.Style
	ConfirmTitle        lipgloss.Style
	ConfirmMessage      lipgloss.Style
	ConfirmButton       lipgloss.Style
	ConfirmButtonActive lipgloss.Style

	// Welcome screen.
	WelcomeBox      lipgloss.Style
	WelcomeLogo     lipgloss.Style
	WelcomeVersion  lipgloss.Style
	WelcomeInfo     lipgloss.Style
	WelcomePressKey lipgloss.Style
	MemoryKey       lipgloss.Style
	MemoryValue     lipgloss.Style
}

// =============================================================================
// STYLE BUILDERS
// =============================================================================

func fg(c lipgloss.AdaptiveColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func fgBold(c lipgloss.AdaptiveColor) lipgloss.Style { return fg(c).Bold(true) }

func fgItalic(c lipgloss.AdaptiveColor) lipgloss.Style { return fg(c).Italic(true) }

func roundedBox(edge lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(edge)
}

func doubleBox(edge lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(edge)
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// NewTheme builds a theme, auto-detecting the terminal background.
func NewTheme() *Theme { return NewThemeForMode("auto") }

// NewThemeForMode builds a theme honoring the configured theme mode.
// "dark" and "light" force the palette side; anything else auto-detects.
// Forcing a side also steers lipgloss so AdaptiveColor resolution and
// the chroma style choice stay consistent with the override.
func NewThemeForMode(mode string) *Theme {
	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	th := &Theme{IsDark: isDark}

	th.Sidebar = roundedBox(FocusRingDim).Padding(0, 1)
	th.SidebarFocused = roundedBox(FocusRing).Padding(0, 1)
	th.SidebarTitle = fgBold(Purple)
	th.SidebarItem = fg(TextPrimary).Padding(0, 1)
	th.SidebarItemActive = fgBold(TextPrimary).Background(SelectionBg).Padding(0, 1)
	th.SidebarPreview = fg(TextMuted)
	th.SidebarTime = fgItalic(TextMuted)

	th.InputPrompt = fgBold(Cyan)
	th.InputText = fg(TextPrimary)
	th.InputPlaceholder = fgItalic(TextMuted)
	th.CharCount = fg(TextMuted).Align(lipgloss.Right)
	th.CharCountWarning = fg(Amber).Align(lipgloss.Right)
	th.CharCountDanger = fg(Rose).Align(lipgloss.Right)

	th.ConnOnline = fgBold(Emerald)
	th.ConnOffline = fgBold(Rose)
	th.SendPending = fgBold(Amber)
	th.ShortcutKey = fgBold(Cyan)
	th.ShortcutDesc = fg(TextMuted)

	th.ConfirmBox = roundedBox(Amber).Background(Surface).Padding(1, 2)
	th.ConfirmTitle = fgBold(Amber)
	th.ConfirmMessage = fg(TextPrimary)
	th.ConfirmButton = fg(TextPrimary).Background(Overlay).Padding(0, 2).MarginRight(1)
	th.ConfirmButtonActive = fgBold(TextInverse).Background(Purple).Padding(0, 2).MarginRight(1)

	th.WelcomeBox = doubleBox(Purple).Padding(2, 4).Align(lipgloss.Center)
	th.WelcomeLogo = fgBold(Cyan)
	th.WelcomeVersion = fgItalic(TextMuted)
	th.WelcomeInfo = fg(TextSecondary)
	th.WelcomePressKey = fg(Purple)
	th.MemoryKey = fgBold(Cyan)
	th.MemoryValue = fg(TextSecondary)

	return th
}
