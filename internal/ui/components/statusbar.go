// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// STATUS BAR - One-row client summary
// =============================================================================

// Status is the client activity state shown at the right end of the bar.
type Status int

const (
	StatusReady   Status = iota // reachable, nothing in flight
	StatusSending               // user message on the wire
	StatusLoading               // history fetch in progress
	StatusError                 // last exchange failed
	StatusIdle                  // no backend activity yet
)

var statusText = map[Status]string{
	StatusReady:   "Ready",
	StatusSending: "Sending...",
	StatusLoading: "Loading...",
	StatusError:   "Error",
	StatusIdle:    "Idle",
}

// statusIcons maps each state to a one-cell marker. Shape carries the
// state alongside color, so the bar reads without color vision.
var statusIcons = map[Status]string{
	StatusReady:   styles.StatusIndicators.Success,
	StatusSending: "~",
	StatusLoading: styles.StatusIndicators.Pending,
	StatusError:   styles.StatusIndicators.Error,
	StatusIdle:    "-",
}

// statusAccents colors the non-sending states; sending borrows the theme's
// pending treatment instead.
var statusAccents = map[Status]lipgloss.AdaptiveColor{
	StatusReady:   styles.Emerald,
	StatusLoading: styles.Amber,
	StatusError:   styles.Rose,
}

// String is the label painted for the status.
func (s Status) String() string { return cmp.Or(statusText[s], "Unknown") }

// Icon is the one-cell marker painted for the status.
func (s Status) Icon() string { return cmp.Or(statusIcons[s], "?") }

// StatusBar is the single-row summary strip at the bottom of the screen.
type StatusBar struct {
	Connected         bool   // Last backend call succeeded at the transport level
	Status            Status // Current activity state
	ConversationCount int    // Total conversations in the list
	MessageCount      int    // Messages in the active conversation
	Title             string // Active conversation title
	Width             int    // Available width
	ShowShortcuts     bool   // Show keyboard shortcuts
	theme             *styles.Theme
}

// NewStatusBar builds the bar optimistic: online, ready, shortcuts on.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Connected: true, Width: 80, ShowShortcuts: true, theme: theme}
}

// SetWidth gives the bar the full terminal width.
func (s *StatusBar) SetWidth(width int) { s.Width = width }

// SetConnected updates the connection indicator. A transport-level
// failure on any backend call flips this to offline until a call
// succeeds again.
func (s *StatusBar) SetConnected(connected bool) { s.Connected = connected }

// SetStatus swaps the activity state.
func (s *StatusBar) SetStatus(status Status) { s.Status = status }

// SetCounts refreshes both totals after a store change.
func (s *StatusBar) SetCounts(conversations, messages int) {
	s.ConversationCount, s.MessageCount = conversations, messages
}

// SetTitle shows the active conversation in the middle section.
func (s *StatusBar) SetTitle(title string) { s.Title = title }

// View renders the status bar in the layout the width allows.
func (s *StatusBar) View() string {
	switch {
	case s.Width < 60:
		return s.renderNarrow()
	case s.Width < 100:
		return s.renderMedium()
	}
	return s.renderWide()
}

// barStyle is the background treatment shared by every layout.
func (s *StatusBar) barStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(styles.SurfaceDim).Foreground(styles.TextSecondary).Width(s.Width)
}

func mutedText(text string) string {
	return lipgloss.NewStyle().Foreground(styles.TextMuted).Render(text)
}

// titleText truncates and dims the conversation title for a section.
func (s *StatusBar) titleText(limit int) string {
	return lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(util.TruncateRunes(s.Title, limit))
}

// renderNarrow: icons and a count are all that fit.
// Format: (+) 3 [OK]
func (s *StatusBar) renderNarrow() string {
	line := s.connStyle().Render(s.connIcon()) + " " +
		mutedText(commas(s.ConversationCount)) + " " +
		s.statusStyle().Render(s.Status.Icon())

	return s.barStyle().Render(line)
}

// renderMedium: connection, title, count and state, separated by pipes.
// Format: (+) online | Title | 3 chats | Status
func (s *StatusBar) renderMedium() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{s.renderConnBadge()}
	if s.Title != "" {
		parts = append(parts, s.titleText(15))
	}
	parts = append(parts,
		mutedText(commas(s.ConversationCount)+" chats"),
		s.statusStyle().Render(s.Status.String()))

	return s.barStyle().Padding(0, 1).Render(strings.Join(parts, sep))
}

// renderWide: everything, spread across the row with a top border.
// Format: (+) online | 3 chats | 12 msgs    Title    Status ^N new ...
func (s *StatusBar) renderWide() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	left := strings.Join([]string{
		s.renderConnBadge(),
		mutedText(commas(s.ConversationCount) + " chats"),
		mutedText(commas(s.MessageCount) + " msgs"),
	}, sep)

	center := ""
	if s.Title != "" {
		center = s.titleText(28)
	}

	right := s.statusStyle().Render(s.Status.String())
	if s.ShowShortcuts {
		right += " " + s.renderShortcuts()
	}

	// Distribute leftover columns around the title, keeping a little air
	// between sections even on crowded bars.
	gap := max(s.Width-lipgloss.Width(left)-lipgloss.Width(center)-lipgloss.Width(right)-4, 4)
	line := left + strings.Repeat(" ", gap/2) + center + strings.Repeat(" ", gap-gap/2) + right

	bar := s.barStyle().Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(styles.Overlay)
	return bar.Render(line)
}

// =============================================================================
// BADGES AND STATE STYLES
// =============================================================================

// renderConnBadge pairs the connection marker with its label. Shape
// carries the state alongside color here too.
func (s *StatusBar) renderConnBadge() string {
	label := " offline"
	if s.Connected {
		label = " online"
	}
	return s.connStyle().Render(s.connIcon() + label)
}

// renderShortcuts paints the abbreviated key hints.
func (s *StatusBar) renderShortcuts() string {
	hints := [][2]string{
		{"^N", "new"},
		{"^D", "del"},
		{"Tab", "chats"},
		{"^C", "quit"},
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = s.theme.ShortcutKey.Render(h[0]) + s.theme.ShortcutDesc.Render(h[1])
	}
	return strings.Join(parts, " ")
}

// connStyle picks the online or offline treatment.
func (s *StatusBar) connStyle() lipgloss.Style {
	if s.Connected {
		return s.theme.ConnOnline
	}
	return s.theme.ConnOffline
}

// connIcon returns a marker for the connection state.
func (s *StatusBar) connIcon() string {
	if s.Connected {
		return styles.MarkerOnline
	}
	return styles.MarkerOffline
}

// statusStyle picks a color treatment per activity state.
func (s *StatusBar) statusStyle() lipgloss.Style {
	if s.Status == StatusSending {
		return s.theme.SendPending
	}
	if accent, ok := statusAccents[s.Status]; ok {
		return lipgloss.NewStyle().Foreground(accent).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(styles.TextMuted)
}
