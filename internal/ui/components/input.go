// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// COMPOSER INPUT
// =============================================================================

// composerCharLimit caps a single outbound message. The backend accepts
// more, but past this point the input should have been a file.
const composerCharLimit = 4096

// composerFrame is the border around the text field; the border color is
// applied per render so it can track focus.
var composerFrame = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.RoundedBorder())

// InputArea is the message composer: a single-line prompt with a usage
// counter underneath. Focus state lives in the embedded textinput; the
// border color follows it.
type InputArea struct {
	input textinput.Model
	width int
	theme *styles.Theme
}

// NewInputArea returns a blurred composer with the default placeholder.
func NewInputArea(theme *styles.Theme) *InputArea {
	in := textinput.New()
	in.Placeholder = "Type a message... (/ for commands)"
	in.CharLimit = composerCharLimit
	in.Width = 70
	in.Prompt = "> "
	in.PromptStyle = theme.InputPrompt
	in.TextStyle = theme.InputText
	in.PlaceholderStyle = theme.InputPlaceholder
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return &InputArea{input: in, width: 80, theme: theme}
}

// Focus gives the composer the keyboard and starts the cursor blink.
func (a *InputArea) Focus() tea.Cmd { return a.input.Focus() }

// Blur releases the keyboard.
func (a *InputArea) Blur() { a.input.Blur() }

// SetWidth resizes the composer; the inner field keeps room for the
// prompt and border.
func (a *InputArea) SetWidth(width int) { a.width, a.input.Width = width, max(width-10, 20) }

// Value returns the text as typed.
func (a *InputArea) Value() string { return a.input.Value() }

// SetValue replaces the composer text.
func (a *InputArea) SetValue(value string) { a.input.SetValue(value) }

// Reset clears the composer after a send.
func (a *InputArea) Reset() { a.input.Reset() }

// Update forwards key events to the inner field.
func (a *InputArea) Update(msg tea.Msg) (*InputArea, tea.Cmd) {
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View renders the rule, the bordered field, and the counter.
func (a *InputArea) View() string {
	border := styles.Overlay
	if a.input.Focused() {
		border = styles.FocusRing
	}

	field := composerFrame.Width(a.width - 2).BorderForeground(border).Render(a.input.View())
	counter := lipgloss.NewStyle().Width(a.width - 4).Align(lipgloss.Right).Render(a.renderCharCounter())

	return lipgloss.JoinVertical(lipgloss.Left, a.renderRule(), field, counter)
}

// renderRule draws the dashed line that separates the transcript from
// the composer.
func (a *InputArea) renderRule() string {
	rule := strings.Repeat("-", max(a.width-4, 10))
	return lipgloss.NewStyle().Foreground(styles.Overlay).Render(rule)
}

// renderCharCounter shows "used / limit chars" and escalates the styling
// as the limit approaches.
func (a *InputArea) renderCharCounter() string {
	count := len([]rune(a.input.Value()))
	limit := a.input.CharLimit

	text := commas(count) + " / " + commas(limit) + " chars"

	switch {
	case usageAtLeast(count, limit, 90):
		return a.theme.CharCountDanger.Render(text + " [!]")
	case usageAtLeast(count, limit, 75):
		return a.theme.CharCountWarning.Render(text + " [~]")
	default:
		return a.theme.CharCount.Render(text)
	}
}

// usageAtLeast reports whether count has reached pct percent of limit.
func usageAtLeast(count, limit, pct int) bool {
	if limit <= 0 {
		return false
	}
	return count*100 >= limit*pct
}
