// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the aide TUI application.

Every widget the chat view composes lives here, built on Bubble Tea and
Lip Gloss and styled through a shared *styles.Theme so the interface
reads as one surface rather than a collection of parts.

# Widgets

	InputArea            (input.go)       composer with character counter
	Sidebar              (sidebar.go)     conversation list with cursor and previews
	StatusBar            (statusbar.go)   connection state, counts, shortcuts
	MessageBubble        (message.go)     styled conversation turns
	RenderMessageContent (codeblock.go)   fence-aware rendering with Chroma highlighting
	Spinner              (spinner.go)     frame-cycling wait animation
	ThinkingIndicator    (spinner.go)     in-flight exchange indicator
	ErrorToast           (error_toast.go) non-blocking notifications
	ConfirmPrompt        (confirm.go)     dialog for destructive actions
	Welcome              (welcome.go)     empty-state screen with remembered facts

# Theming

Components take a theme at construction so colors stay uniform:

	bar := components.NewStatusBar(styles.NewTheme())
	bar.SetWidth(80)
	bar.SetCounts(3, 12)
	view := bar.View()

# Update pattern

Interactive widgets follow the usual Bubble Tea shape: a value-receiver
Update returning the advanced component plus a command, and a View that
renders from current state. Static widgets expose View only.

helpers.go holds small render-path helpers shared across widgets: itoa
(strconv.Itoa under a shorter name) and commas (thousand-separated
formatting via go-humanize).
*/
package components
