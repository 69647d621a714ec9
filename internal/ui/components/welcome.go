// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// maxMemoryItems bounds how many remembered facts the welcome screen
// lists before collapsing the rest into a count.
const maxMemoryItems = 5

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome fills the transcript pane for a conversation with no messages
// yet. It shows the logo, the facts the assistant remembers about the
// user, and how to get started.
type Welcome struct {
	version string
	memory  []view.MemoryItem
	width   int
	height  int
	theme   *styles.Theme
}

// NewWelcome builds the screen with a placeholder version until main
// injects the real one.
func NewWelcome(theme *styles.Theme) Welcome { return Welcome{version: "dev", theme: theme} }

// SetVersion records the build version shown under the logo.
func (s *Welcome) SetVersion(version string) { s.version = version }

// SetMemory sets the remembered user facts to display.
func (s *Welcome) SetMemory(items []view.MemoryItem) { s.memory = items }

// SetSize records the pane dimensions.
func (s *Welcome) SetSize(width, height int) { s.width, s.height = width, height }

// =============================================================================
// TEA MODEL PLUMBING
// =============================================================================

// Init satisfies tea.Model; the screen needs no startup command.
func (s Welcome) Init() tea.Cmd { return nil }

// Update tracks pane resizes and ignores everything else.
func (s Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		s.width, s.height = size.Width, size.Height
	}
	return s, nil
}

// View renders the welcome screen centered in the pane. The layout
// degrades in steps as the terminal shrinks, down to a one-line logo.
func (s Welcome) View() string {
	width := cmp.Or(s.width, 80)
	height := cmp.Or(s.height, 24)

	boxWidth, hPad, vPad := welcomeBoxGeometry(width)

	// Border rows plus padding rows never hold content.
	overhead := 2 + 2*vPad
	content, lines := s.buildContent(height - overhead)

	// Still too tall with content chosen: sacrifice the padding rows.
	if lines+overhead > height {
		vPad = 0
	}

	box := s.theme.WelcomeBox.Padding(vPad, hPad).Width(boxWidth).Render(content)

	// A box taller than the pane anchors to the top so the logo stays
	// visible and the overflow clips at the bottom.
	vAlign := lipgloss.Center
	if lipgloss.Height(box) >= height {
		vAlign = lipgloss.Top
	}
	return lipgloss.Place(width, height, lipgloss.Center, vAlign, box)
}

// welcomeBoxGeometry picks the box width and padding for a terminal of
// the given column count. The box targets 62 columns and gives up
// padding before it gives up content on narrow terminals.
func welcomeBoxGeometry(cols int) (boxWidth, hPad, vPad int) {
	boxWidth, hPad, vPad = 62, 4, 1
	if cols < 70 {
		boxWidth = cols - 8
		hPad = 2
	}
	boxWidth = max(boxWidth, 40)
	boxWidth = min(boxWidth, cols-4)
	return boxWidth, hPad, vPad
}

// buildContent assembles the sections that fit in the given number of
// content rows and returns the joined text with its expected height.
// Logo 5 rows, version 1, quick start 5, hint 1, memory variable, plus
// the blank rows between sections.
func (s Welcome) buildContent(room int) (content string, lines int) {
	memory := s.renderMemory()

	switch {
	case room >= 22 && memory != "":
		content = strings.Join([]string{
			s.renderLogo(),
			s.renderVersion(),
			memory,
			s.renderQuickStart(),
			s.renderStartHint(),
		}, "\n\n")
		lines = 5 + 2 + 1 + 2 + lipgloss.Height(memory) + 2 + 5 + 2 + 1
	case room >= 16:
		content = strings.Join([]string{
			s.renderLogo(),
			s.renderVersion(),
			s.renderQuickStart(),
			s.renderStartHint(),
		}, "\n\n")
		lines = 5 + 2 + 1 + 2 + 5 + 2 + 1
	case room >= 10:
		// Compact: drop the tips, tighten the spacing.
		content = strings.Join([]string{
			s.renderLogo(),
			s.renderVersion(),
			s.renderStartHint(),
		}, "\n")
		lines = 5 + 1 + 1 + 1 + 1
	default:
		content = s.renderLogoCompact() + "\n" + s.renderStartHint()
		lines = 3 + 1 + 1
	}
	return content, lines
}

// =============================================================================
// SECTION RENDERERS
// =============================================================================

// renderLogo renders the ASCII art logo (5 lines).
// Responsive: uses the compact logo for narrow terminals.
func (s Welcome) renderLogo() string {
	// Full ASCII art is ~26 chars wide, needs ~34 with box padding
	if s.width >= 48 {
		logo := `    _    ___ ____  _____
   / \  |_ _|  _ \| ____|
  / _ \  | || | | |  _|
 / ___ \ | || |_| | |___
/_/   \_\___|____/|_____|`
		return s.theme.WelcomeLogo.Render(logo)
	}

	return s.renderLogoCompact()
}

// renderLogoCompact renders a compact text-based logo (3 lines), or a
// bare one-liner when even that will not fit.
func (s Welcome) renderLogoCompact() string {
	if s.width >= 32 {
		return s.theme.WelcomeLogo.Render(`+------------------+
|       aide       |
+------------------+`)
	}

	return s.theme.WelcomeLogo.Render("aide")
}

// renderVersion paints the subtitle line under the logo.
func (s Welcome) renderVersion() string {
	return s.theme.WelcomeVersion.Render("Terminal client for your AI assistant v" + s.version)
}

// renderMemory renders the facts the assistant remembers about the user.
// Returns "" when there is nothing remembered yet.
func (s Welcome) renderMemory() string {
	if len(s.memory) == 0 {
		return ""
	}

	items := s.memory
	overflow := 0
	if len(items) > maxMemoryItems {
		overflow = len(items) - maxMemoryItems
		items = items[:maxMemoryItems]
	}

	heading := lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true)
	rows := make([]string, 0, len(items)+2)
	rows = append(rows, heading.Render("Remembered about you:"))

	for _, item := range items {
		rows = append(rows,
			s.theme.MemoryKey.Render(item.Key+":")+" "+
				s.theme.MemoryValue.Render(util.TruncateRunes(item.Value, 40)))
	}

	if overflow > 0 {
		more := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
		rows = append(rows, more.Render("+"+itoa(overflow)+" more"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// quickStartTips is the short list of first-session hints on the
// welcome screen.
var quickStartTips = []string{
	"Type a message and press Enter",
	"Ctrl+N starts a new conversation",
	"Tab focuses the conversation list",
	"Use /help to see all commands",
}

// renderQuickStart lists the first-session tips.
func (s Welcome) renderQuickStart() string {
	title := lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true).Render("Quick Start:")
	bullet := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render("-")

	rows := make([]string, len(quickStartTips))
	for i, tip := range quickStartTips {
		rows[i] = bullet + s.theme.WelcomeInfo.Render(" "+tip)
	}

	return title + "\n" + lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderStartHint renders the "type to begin" prompt.
func (s Welcome) renderStartHint() string {
	return s.theme.WelcomePressKey.Render("Type a message to begin...")
}
