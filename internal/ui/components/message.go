// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT - Styled transcript bubbles
// =============================================================================

// Bubble frames are built once; render paths only apply the width.
var (
	userFrame      = bubbleFrame(styles.UserBubbleFg, styles.UserBubbleBg, styles.UserBubbleBorder)
	assistantFrame = bubbleFrame(styles.AssistantBubbleFg, styles.AssistantBubbleBg, styles.AssistantBubbleBorder).MarginRight(4)
	fallbackFrame  = bubbleFrame(styles.TextPrimary, lipgloss.NoColor{}, styles.Overlay)

	// headerStyle dims the author and time line painted above each bubble.
	headerStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	emptyListStyle = lipgloss.NewStyle().Align(lipgloss.Center).Padding(2, 0).Foreground(styles.TextMuted).Italic(true)
)

// bubbleFrame is the rounded-border chrome every bubble variant shares.
func bubbleFrame(fg, bg, border lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(bg).
		BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 2)
}

// MessageBubble renders one projected transcript message as a styled
// bubble. It consumes the projection directly: author label and time
// label arrive pre-computed, so the bubble never touches the clock.
type MessageBubble struct {
	Message       view.TranscriptMessage
	ShowTimestamp bool

	// Set by the owning list as the terminal resizes.
	Width    int
	IsLatest bool

	theme *styles.Theme
}

// NewMessageBubble builds a bubble at the default 80-column width with
// time labels turned on.
func NewMessageBubble(msg view.TranscriptMessage, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{Message: msg, ShowTimestamp: true, Width: 80, theme: theme}
}

// SetWidth adjusts the total width the bubble may occupy.
func (mb *MessageBubble) SetWidth(width int) { mb.Width = width }

// SetIsLatest flags the bubble as the newest in the transcript.
func (mb *MessageBubble) SetIsLatest(latest bool) { mb.IsLatest = latest }

// View picks the renderer matching the message's role.
func (mb *MessageBubble) View() string {
	switch mb.Message.Role {
	case model.RoleUser:
		return mb.renderUser()
	case model.RoleAssistant:
		return mb.renderAssistant()
	}
	return mb.renderFallback()
}

// =============================================================================
// USER BUBBLE - Right-hugging, blue palette
// =============================================================================

func (mb *MessageBubble) renderUser() string {
	wrapped := wordWrap(mb.contentOrPlaceholder(), mb.contentBudget(12))
	bubbleWidth := min(maxLineWidth(wrapped)+4, mb.Width-8)
	bubble := userFrame.Width(bubbleWidth).Render(wrapped)

	// Own messages hug the right edge.
	pad := lipgloss.NewStyle().MarginLeft(max(mb.Width-bubbleWidth-4, 0))

	return lipgloss.JoinVertical(lipgloss.Right,
		pad.Render(mb.bubbleHeader()),
		pad.Render(bubble))
}

// =============================================================================
// ASSISTANT BUBBLE - Left-anchored, violet palette, code-aware
// =============================================================================

func (mb *MessageBubble) renderAssistant() string {
	content := mb.contentOrPlaceholder()
	budget := mb.contentBudget(12)

	var body string
	var bubbleWidth int
	if HasFencedCode(content) {
		// Fenced replies take the full bubble width: highlighted lines
		// carry ANSI sequences that rune math cannot measure.
		body = RenderMessageContent(content, budget)
		bubbleWidth = mb.Width - 8
	} else {
		body = wordWrap(content, budget)
		// Width from the plain text, before inline spans add styling.
		bubbleWidth = min(maxLineWidth(body)+4, mb.Width-8)
		body = styleInlineCode(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		mb.bubbleHeader(),
		assistantFrame.Width(bubbleWidth).Render(body))
}

// =============================================================================
// FALLBACK BUBBLE - Neutral chrome for other roles
// =============================================================================

func (mb *MessageBubble) renderFallback() string {
	budget := min(mb.contentBudget(10), mb.Width-2)
	return fallbackFrame.Render(wordWrap(mb.contentOrPlaceholder(), budget))
}

// =============================================================================
// BUBBLE HELPERS
// =============================================================================

// contentOrPlaceholder substitutes an ellipsis for empty content so a
// pending or cleared message still paints a bubble.
func (mb *MessageBubble) contentOrPlaceholder() string {
	if mb.Message.Content == "" {
		return "..."
	}
	return mb.Message.Content
}

// contentBudget is the wrap width left inside the bubble once chrome
// (borders, padding, margins) is taken out. Never below 20 columns, so
// extreme terminal widths degrade instead of inverting the layout.
func (mb *MessageBubble) contentBudget(chrome int) int {
	return max(mb.Width-chrome, 20)
}

// bubbleHeader renders the dimmed "author time" line shown above a bubble.
func (mb *MessageBubble) bubbleHeader() string {
	header := headerStyle.Render(mb.authorLabel())
	if ts := mb.renderTimeLabel(); mb.ShowTimestamp && ts != "" {
		header += " " + ts
	}
	return header
}

// authorLabel returns the lowercased author label for the bubble header.
func (mb *MessageBubble) authorLabel() string {
	if mb.Message.Author != "" {
		return strings.ToLower(mb.Message.Author)
	}
	// Projection without an author: fall back to the role name.
	return mb.Message.Role.String()
}

// renderTimeLabel renders the dimmed relative-time label, or nothing
// when the projection carries none.
func (mb *MessageBubble) renderTimeLabel() string {
	if mb.Message.TimeLabel == "" {
		return ""
	}
	return headerStyle.Render(mb.Message.TimeLabel)
}

// =============================================================================
// WRAPPING AND MEASUREMENT
// =============================================================================

// wordWrap wraps s to w runes per row, one input line at a time, so
// existing newlines survive. Zero or negative widths disable wrapping.
func wordWrap(s string, w int) string {
	if w <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = wrapBubbleLine(line, w)
	}
	return strings.Join(lines, "\n")
}

// wrapBubbleLine greedily packs words into rows of at most w runes. A
// single word longer than w keeps its own row rather than being split
// mid-word.
func wrapBubbleLine(line string, w int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	row := words[0]
	for _, word := range words[1:] {
		if util.RuneLen(row)+1+util.RuneLen(word) <= w {
			row += " " + word
			continue
		}
		sb.WriteString(row)
		sb.WriteByte('\n')
		row = word
	}
	sb.WriteString(row)
	return sb.String()
}

// maxLineWidth returns the longest line length in runes. Callers measure
// plain text before styling, so rune math is accurate here.
func maxLineWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, util.RuneLen(line))
	}
	return w
}

// =============================================================================
// MESSAGE LIST - Vertical run of bubbles
// =============================================================================

// MessageList renders the projected transcript as a vertical run of
// message bubbles.
type MessageList struct {
	Messages       []view.TranscriptMessage
	ShowTimestamps bool

	Width int
	theme *styles.Theme
}

// NewMessageList builds an empty list at the default width with time
// labels turned on.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{Width: 80, ShowTimestamps: true, theme: theme}
}

// SetMessages replaces the rendered transcript.
func (ml *MessageList) SetMessages(msgs []view.TranscriptMessage) { ml.Messages = msgs }

// SetWidth adjusts the width available to each bubble.
func (ml *MessageList) SetWidth(width int) { ml.Width = width }

// View renders all messages, one blank line apart.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		return emptyListStyle.Width(ml.Width).Render("No messages yet. Start a conversation!")
	}

	last := len(ml.Messages) - 1
	bubbles := make([]string, len(ml.Messages))
	for i, m := range ml.Messages {
		b := NewMessageBubble(m, ml.theme)
		b.Width, b.ShowTimestamp = ml.Width, ml.ShowTimestamps
		b.IsLatest = i == last
		bubbles[i] = b.View()
	}
	return strings.Join(bubbles, "\n")
}
