// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation workspace of the TUI.
//
// This file contains all rendering logic for the chat workspace:
//   - Full-screen composition (View, renderWorkspace)
//   - Header and activity line
//   - Transcript area states (loading, welcome, empty, messages)
//   - Help and memory overlays
//   - Toast overlay merging
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/aide-tui/internal/ui/components"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// Chrome styles, built once. Width-dependent values are applied per frame.
var (
	headerBar    = lipgloss.NewStyle().Background(styles.SurfaceDim).Padding(0, 1)
	headerName   = lipgloss.NewStyle().Bold(true).Foreground(styles.Purple)
	offlineBadge = lipgloss.NewStyle().Background(styles.Rose).Foreground(styles.TextInverse).Bold(true).Padding(0, 1)
	activityBar  = lipgloss.NewStyle().MaxHeight(1).Padding(0, 1)
	mutedText    = lipgloss.NewStyle().Foreground(styles.TextMuted)
	emptyTitle   = lipgloss.NewStyle().Bold(true).Foreground(styles.TextSecondary)
)

// =============================================================================
// TOP-LEVEL COMPOSITION
// =============================================================================

// View renders the full screen. Overlays replace the workspace while
// visible; toasts merge into it without displacing anything.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting aide..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.showMemory {
		return m.renderMemoryOverlay()
	}
	if m.confirm.IsVisible() {
		return m.confirm.View()
	}

	base := m.renderWorkspace()

	if m.toasts.HasToasts() {
		return m.overlayToasts(base)
	}
	return base
}

// orDefault substitutes a usable dimension while the first WindowSizeMsg
// is still in flight.
func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// clampBox forces a block to exact dimensions when measurement drifts
// from the pre-calculated sizes.
func clampBox(s string, width, height int) string {
	return lipgloss.NewStyle().Height(height).MaxHeight(height).Width(width).Render(s)
}

// renderWorkspace renders the regular chat layout.
// Layout: header (1 line) + [sidebar | transcript] + activity line (1 line)
// + input area + status bar. The stack must equal m.height exactly.
//
// COUPLING WARNING: the viewport height is pre-calculated in onResize()
// (model.go) from conservative constants. This function measures the actual
// component heights with lipgloss.Height() and clamps the content row when
// they drift. If a component's height changes here, update the constants in
// onResize() too.
func (m Model) renderWorkspace() string {
	header := m.renderHeader()
	activity := m.renderActivityLine()
	input := m.input.View()
	status := m.status.View()

	chrome := lipgloss.Height(header) + lipgloss.Height(activity) +
		lipgloss.Height(input) + lipgloss.Height(status)
	availableHeight := max(m.height-chrome, 1)

	// The sidebar knows its own width; measure instead of re-deriving the
	// cap applied in onResize.
	var sidebarView string
	mainWidth := m.width
	if m.sidebarVisible {
		sidebarView = m.sidebar.View()
		mainWidth = max(mainWidth-lipgloss.Width(sidebarView), 1)
	}

	main := m.renderTranscriptArea(mainWidth, availableHeight)

	content := main
	if m.sidebarVisible {
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, main)
	}

	// Clamp the content row if the pre-calculated sizes drifted from the
	// measured ones, so the stack never overflows the terminal.
	if lipgloss.Height(content) != availableHeight {
		content = clampBox(content, m.width, availableHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, activity, input, status)
}

// renderTranscriptArea renders the main area for the current transcript
// projection state.
func (m Model) renderTranscriptArea(width, height int) string {
	switch m.transcriptState {
	case view.TranscriptLoading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.loading.View())

	case view.TranscriptWelcome:
		return m.welcome.View()

	case view.TranscriptMessages:
		messages := m.vp.View()
		if lipgloss.Height(messages) != height {
			// Viewport height mismatch; force the correct height so the
			// layout survives until the next resize corrects it.
			messages = clampBox(messages, width, height)
		}
		return messages

	default:
		return m.renderEmptyTranscript(width, height)
	}
}

// renderEmptyTranscript shows the hint when no conversation is selected,
// which happens before the first fetch completes or when the list is empty.
func (m Model) renderEmptyTranscript(width, height int) string {
	title := emptyTitle.Render("No conversation selected")
	hint := mutedText.Render("Press Ctrl+N to start one, or Tab to browse the list.")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, title+"\n\n"+hint)
}

// =============================================================================
// HEADER AND ACTIVITY LINE
// =============================================================================

// renderHeader renders the one-line title bar with the app name, the
// current conversation title, and the connectivity badge.
func (m Model) renderHeader() string {
	width := orDefault(m.width, 80)

	title := "No conversation"
	if conv, ok := m.session.Current(); ok {
		title = conv.Title
	}

	content := headerName.Render("aide") + mutedText.Render(" | "+title)
	if !m.connected {
		content += " " + offlineBadge.Render("OFFLINE")
	}

	// Long titles must not wrap the header onto a second line.
	content = truncate.StringWithTail(content, uint(width-2), "...")

	return headerBar.Width(width).Render(content)
}

// renderActivityLine renders the single line between the transcript and
// the input: the pending-reply spinner while an exchange is in flight,
// otherwise a short usage hint. The reply wait has no client-side cap,
// so the spinner's elapsed timer is the only progress signal.
func (m Model) renderActivityLine() string {
	width := orDefault(m.width, 80)

	content := mutedText.Render("Enter to send | /help for commands")
	if m.sending {
		content = m.thinking.View()
	}
	return activityBar.Width(width).Render(content)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

var (
	overlayRule  = strings.Repeat("─", 35)
	overlayTitle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)

	helpKey   = lipgloss.NewStyle().Foreground(styles.Amber)
	helpGroup = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	memoryKey   = lipgloss.NewStyle().Foreground(styles.Cyan)
	memoryValue = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	memoryEmpty = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
)

// overlayBox is the bordered shell shared by the help and memory overlays.
// Width and height caps are applied per render.
var overlayBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(styles.Purple).
	Foreground(styles.TextPrimary).
	Background(styles.Surface).
	Padding(1, 2)

// renderHelpOverlay renders the keyboard and command reference. Only key
// bindings that work in the current focus context are listed; slash
// commands work anywhere the input accepts text.
func (m Model) renderHelpOverlay() string {
	width := orDefault(m.width, 80)
	height := orDefault(m.height, 24)

	activeContext := ContextInput
	switch {
	case m.confirm.IsVisible():
		activeContext = ContextConfirm
	case m.focus == focusList:
		activeContext = ContextList
	}

	grouped := helpItemsByCategory(activeContext)

	var b strings.Builder
	fmt.Fprintf(&b, "Keys available now (%s)\n", contextDisplayName(activeContext))
	b.WriteString(overlayRule + "\n\n")

	wroteAny := false
	for _, category := range categoryOrder {
		entries := grouped[category]
		if len(entries) == 0 {
			continue
		}

		wroteAny = true
		b.WriteString(helpGroup.Render(string(category)) + "\n")
		for _, entry := range entries {
			fmt.Fprintf(&b, "  %s  %s\n",
				helpKey.Render(fmt.Sprintf("%-14s", entry.Key)),
				mutedText.Render(entry.Desc))
		}
		b.WriteString("\n")
	}

	if !wroteAny {
		b.WriteString("  (no bindings specific to this view)\n\n")
	}

	b.WriteString(helpGroup.Render("Commands") + "\n")
	for _, cmd := range commandHelp {
		fmt.Fprintf(&b, "  %s  %s\n",
			helpKey.Render(fmt.Sprintf("%-17s", cmd.Name)),
			mutedText.Render(cmd.Desc))
	}
	b.WriteString("\n")

	b.WriteString(overlayRule + "\n")
	b.WriteString(overlayFooter())

	return m.renderOverlayBox(b.String(), width, height)
}

// =============================================================================
// MEMORY OVERLAY
// =============================================================================

// renderMemoryOverlay renders the remembered facts fetched at startup.
// The list is read-only; the backend curates it.
func (m Model) renderMemoryOverlay() string {
	width := orDefault(m.width, 80)
	height := orDefault(m.height, 24)

	var b strings.Builder
	b.WriteString(overlayTitle.Render("What aide remembers") + "\n")
	b.WriteString(overlayRule + "\n\n")

	memory := m.session.Memory()
	if len(memory) == 0 {
		b.WriteString(memoryEmpty.Render("Nothing remembered yet.") + "\n")
	} else {
		for _, key := range memory.SortedKeys() {
			fmt.Fprintf(&b, "  %s %s\n", memoryKey.Render(key+":"), memoryValue.Render(memory[key]))
		}
	}

	b.WriteString("\n")
	b.WriteString(overlayFooter())

	return m.renderOverlayBox(b.String(), width, height)
}

// overlayFooter renders the dismiss hint shared by every overlay.
func overlayFooter() string {
	return lipgloss.NewStyle().Foreground(styles.Overlay).Render("Press Esc or Enter to close")
}

// renderOverlayBox wraps overlay content in the standard centered box.
func (m Model) renderOverlayBox(content string, width, height int) string {
	lines := strings.Count(content, "\n") + 1
	box := overlayBox.Width(min(64, width-4)).MaxHeight(min(lines+2, height-4)).Render(content)

	center := lipgloss.NewStyle().
		MarginLeft(max((width-lipgloss.Width(box))/2, 0)).
		MarginTop(max((height-lipgloss.Height(box))/2, 0))
	return center.Render(box)
}

// =============================================================================
// TOAST OVERLAY
// =============================================================================

// overlayToasts merges the toast stack into the bottom-right corner of
// the workspace without repositioning anything underneath.
func (m Model) overlayToasts(base string) string {
	stack := components.RenderToastStack(m.toasts.GetToasts(), m.width)
	if stack == "" {
		return base
	}

	baseLines := strings.Split(base, "\n")
	stackLines := strings.Split(stack, "\n")

	// Start above the status bar.
	startRow := max(m.height-len(stackLines)-2, 0)

	merged := make([]string, len(baseLines))
	for i, line := range baseLines {
		j := i - startRow
		if j < 0 || j >= len(stackLines) || lipgloss.Width(stackLines[j]) == 0 {
			merged[i] = line
			continue
		}

		t := stackLines[j]
		room := max(m.width-lipgloss.Width(t)-1, 0)

		if lipgloss.Width(line) > room {
			line = truncate.String(line, uint(room))
		}
		if pad := room - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}

		merged[i] = line + t
	}

	return strings.Join(merged, "\n")
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatCount renders a count with its pluralized noun.
func formatCount(n int, noun string) string {
	s := util.IntToString(n) + " " + noun
	if n != 1 {
		s += "s"
	}
	return s
}
