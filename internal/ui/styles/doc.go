// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the aide TUI.

Everything visual flows from here: the adaptive color palette, the Theme
struct of prebuilt Lip Gloss styles, spinner frame sets, and the ASCII
marker vocabulary. Components consume styles; they do not define colors.

# Palette (colors.go)

All colors are lipgloss.AdaptiveColor pairs that resolve against the
terminal background. The accents carry fixed semantics:

	Purple  - assistant output, selections
	Cyan    - brand accent, commands, user highlights
	Emerald - success, connected
	Amber   - warnings, pending sends
	Rose    - errors

Surfaces and text form a hierarchy (Surface, SurfaceDim, Overlay,
OverlayDim; TextPrimary, TextSecondary, TextMuted). Message bubbles get
dedicated bg/fg/border triples for the user and assistant sides.

StatusIndicators pairs each status state with an ASCII marker ([OK],
[X], [!], ...) so state never rides on color alone; the CLI commands
print the same markers.

# Theme (theme.go)

Theme is a struct of ready-to-render styles, grouped by component:
sidebar, composer, status bar, confirmation prompt, welcome screen.

	theme := styles.NewTheme()           // auto-detect background
	theme = styles.NewThemeForMode("light") // or force a side

Forcing a side also steers lipgloss's background flag, so adaptive
color resolution and syntax highlighting stay consistent with the
override. IsDark reports which side the constructor resolved.

# Animations (animations.go)

SpinnerConfig bundles a frame set with its playback rate; Duration
converts FPS to the per-frame interval the bubbles spinner expects.
LineSpinner is the generic loading animation, DotsSpinner drives the
thinking indicator. MarkerOnline and MarkerOffline are the connection
shapes in the status bar.

# Usage

	th := styles.NewTheme()
	online := th.ConnOnline.Render(styles.MarkerOnline)
	bar := lipgloss.NewStyle().Background(styles.SurfaceDim).Width(80)
*/
package styles
