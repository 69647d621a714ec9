// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the aide TUI.
// All colors use Lip Gloss AdaptiveColor so the palette tracks the
// terminal's light/dark background automatically.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT PALETTE
// =============================================================================

// Accent colors. Purple marks assistant output and selections, Cyan is
// the brand accent for commands and user highlights, Emerald and Amber
// carry success/warning semantics, Rose is reserved for errors.
var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
)

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

// Surface colors follow Catppuccin Mocha on dark terminals and plain
// near-white tones on light ones.
var (
	Surface    = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	OverlayDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}
)

// Text colors, from body copy down to timestamps.
var (
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// User turns render in blue, assistant turns in muted violet. Each
// bg/fg pair keeps readable contrast in both modes.
var (
	UserBubbleBg     = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

	AssistantBubbleBg     = lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#3B3655"}
	AssistantBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// =============================================================================
// SELECTION AND FOCUS
// =============================================================================

var (
	// SelectionBg backs the active sidebar entry.
	SelectionBg = lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A5F"}

	// FocusRing outlines the focused pane; unfocused panes drop to
	// FocusRingDim.
	FocusRing    = Cyan
	FocusRingDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}
)

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet pairs each status state with an ASCII marker so
// state never rides on color alone.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators is the shared marker vocabulary. The CLI commands
// print the same markers, which keeps scripted output grep-friendly.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}
