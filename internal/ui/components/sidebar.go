// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// =============================================================================
// SIDEBAR COMPONENT - Conversation list pane
// =============================================================================

// Sidebar renders the conversation list: most recently updated first,
// with the active conversation highlighted and a cursor for keyboard
// navigation. Each entry takes two rows (title, then preview and time).
type Sidebar struct {
	entries  []view.ListEntry
	selected int // Cursor position
	offset   int // First visible entry
	focused  bool
	width    int
	height   int
	theme    *styles.Theme
}

// NewSidebar creates a new sidebar component.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{
		theme: theme,
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetSize sets the component dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.ensureVisible()
}

// SetEntries replaces the listed conversations. The cursor follows the
// entry it was on when the list reorders; if that entry is gone, it
// stays clamped in range.
func (s *Sidebar) SetEntries(entries []view.ListEntry) {
	prevID := s.SelectedID()
	s.entries = entries

	if prevID != "" {
		for i, entry := range entries {
			if entry.ID == prevID {
				s.selected = i
				s.ensureVisible()
				return
			}
		}
	}

	if s.selected >= len(entries) {
		s.selected = len(entries) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	s.ensureVisible()
}

// Focus marks the sidebar as the focused pane.
func (s *Sidebar) Focus() {
	s.focused = true
}

// Blur removes focus from the sidebar.
func (s *Sidebar) Blur() {
	s.focused = false
}

// Focused returns whether the sidebar is focused.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// =============================================================================
// NAVIGATION
// =============================================================================

// MoveUp moves the cursor to the previous conversation.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
		s.ensureVisible()
	}
}

// MoveDown moves the cursor to the next conversation.
func (s *Sidebar) MoveDown() {
	if s.selected < len(s.entries)-1 {
		s.selected++
		s.ensureVisible()
	}
}

// CursorToActive moves the cursor onto the active conversation.
func (s *Sidebar) CursorToActive() {
	for i, entry := range s.entries {
		if entry.Active {
			s.selected = i
			s.ensureVisible()
			return
		}
	}
}

// SelectedID returns the id of the conversation under the cursor, or ""
// when the list is empty.
func (s *Sidebar) SelectedID() string {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return ""
	}
	return s.entries[s.selected].ID
}

// SelectedEntry returns the entry under the cursor, or nil when the
// list is empty.
func (s *Sidebar) SelectedEntry() *view.ListEntry {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return nil
	}
	entry := s.entries[s.selected]
	return &entry
}

// Count returns the number of listed conversations.
func (s *Sidebar) Count() int {
	return len(s.entries)
}

// visibleCount returns how many entries fit in the pane.
func (s *Sidebar) visibleCount() int {
	// Border (2), title row, separator row.
	inner := s.height - 4
	if inner < 2 {
		inner = 2
	}
	return inner / 2
}

// ensureVisible scrolls the window so the cursor stays on screen.
func (s *Sidebar) ensureVisible() {
	visible := s.visibleCount()
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+visible {
		s.offset = s.selected - visible + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the sidebar.
func (s *Sidebar) View() string {
	panelStyle := s.theme.Sidebar
	if s.focused {
		panelStyle = s.theme.SidebarFocused
	}

	// Border and padding overhead
	innerWidth := s.width - 4
	if innerWidth < 12 {
		innerWidth = 12
	}

	var b strings.Builder

	// Header
	b.WriteString(s.theme.SidebarTitle.Render("Conversations (" + itoa(len(s.entries)) + ")"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Overlay).Render(strings.Repeat("-", innerWidth)))
	b.WriteString("\n")

	if len(s.entries) == 0 {
		b.WriteString(s.renderEmpty(innerWidth))
	} else {
		b.WriteString(s.renderEntries(innerWidth))
	}

	return panelStyle.
		Width(s.width - 2).
		Height(s.height - 2).
		Render(b.String())
}

// renderEmpty renders the empty state.
func (s *Sidebar) renderEmpty(innerWidth int) string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Width(innerWidth).
		Align(lipgloss.Center).
		Padding(1, 0)

	return emptyStyle.Render("No conversations yet")
}

// renderEntries renders the visible window of conversation rows.
func (s *Sidebar) renderEntries(innerWidth int) string {
	visible := s.visibleCount()
	end := s.offset + visible
	if end > len(s.entries) {
		end = len(s.entries)
	}

	var b strings.Builder

	moreStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	if s.offset > 0 {
		b.WriteString(moreStyle.Render("^ " + itoa(s.offset) + " more"))
		b.WriteString("\n")
	}

	for i := s.offset; i < end; i++ {
		b.WriteString(s.renderEntry(s.entries[i], i == s.selected, innerWidth))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if rest := len(s.entries) - end; rest > 0 {
		b.WriteString("\n")
		b.WriteString(moreStyle.Render("v " + itoa(rest) + " more"))
	}

	return b.String()
}

// renderEntry renders one two-row conversation entry.
func (s *Sidebar) renderEntry(entry view.ListEntry, underCursor bool, innerWidth int) string {
	// Cursor marker only shows while the sidebar has focus.
	marker := "  "
	if underCursor && s.focused {
		marker = "> "
	}

	titleStyle := s.theme.SidebarItem
	if entry.Active {
		titleStyle = s.theme.SidebarItemActive
	}

	titleLine := titleStyle.Render(util.TruncateWidth(entry.Title, innerWidth-4))

	// Preview line with the time label on the right
	timeLabel := s.theme.SidebarTime.Render(entry.TimeLabel)
	timeWidth := lipgloss.Width(timeLabel)

	previewBudget := innerWidth - timeWidth - 4
	if previewBudget < 4 {
		previewBudget = 4
	}
	preview := s.theme.SidebarPreview.Render(util.TruncateWidth(entry.Preview, previewBudget))

	gap := innerWidth - 2 - lipgloss.Width(preview) - timeWidth
	if gap < 1 {
		gap = 1
	}
	metaLine := "  " + preview + strings.Repeat(" ", gap) + timeLabel

	return marker + titleLine + "\n" + metaLine
}
