// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// CONFIRMATION PROMPT
// =============================================================================

// ConfirmAction identifies what a confirmation dialog will do when
// confirmed.
type ConfirmAction int

const (
	// ConfirmDelete removes a single conversation.
	ConfirmDelete ConfirmAction = iota

	// ConfirmClearAll removes every conversation.
	ConfirmClearAll
)

// ConfirmResponseMsg is emitted when the user resolves a confirmation
// dialog, whether by button or by shortcut key.
type ConfirmResponseMsg struct {
	Action    ConfirmAction
	TargetID  string
	Confirmed bool
}

// ConfirmPrompt displays a modal dialog before destructive actions.
// Deletes are confirmed against the backend before any local state
// changes, so the dialog names exactly what will be removed.
type ConfirmPrompt struct {
	// What is being confirmed
	action   ConfirmAction
	targetID string
	title    string
	count    int

	// UI state
	visible  bool
	selected int // 0=Confirm, 1=Cancel
	width    int
	height   int

	// Styles
	theme *styles.Theme
}

// Button options
const (
	ButtonConfirm = 0
	ButtonCancel  = 1
	ButtonCount   = 2
)

// NewConfirmPrompt creates a new confirmation prompt.
func NewConfirmPrompt(theme *styles.Theme) *ConfirmPrompt {
	return &ConfirmPrompt{
		theme:    theme,
		selected: ButtonCancel,
	}
}

// =============================================================================
// CONFIRMATION PROMPT METHODS
// =============================================================================

// ShowDelete displays the prompt for deleting one conversation.
func (p *ConfirmPrompt) ShowDelete(id, title string) {
	p.action = ConfirmDelete
	p.targetID = id
	p.title = title
	p.count = 0
	p.visible = true
	p.selected = ButtonCancel
}

// ShowClearAll displays the prompt for removing every conversation.
func (p *ConfirmPrompt) ShowClearAll(count int) {
	p.action = ConfirmClearAll
	p.targetID = ""
	p.title = ""
	p.count = count
	p.visible = true
	p.selected = ButtonCancel
}

// Hide hides the confirmation prompt.
func (p *ConfirmPrompt) Hide() {
	p.visible = false
	p.targetID = ""
	p.title = ""
	p.count = 0
}

// IsVisible returns whether the prompt is visible.
func (p *ConfirmPrompt) IsVisible() bool {
	return p.visible
}

// Action returns the action currently being confirmed.
func (p *ConfirmPrompt) Action() ConfirmAction {
	return p.action
}

// SetSize updates the prompt dimensions.
func (p *ConfirmPrompt) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// =============================================================================
// BUBBLE TEA METHODS
// =============================================================================

// Update handles key events for the confirmation prompt. The boolean
// reports whether the event was consumed.
func (p *ConfirmPrompt) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !p.visible {
		return nil, false
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			p.selected = (p.selected - 1 + ButtonCount) % ButtonCount
			return nil, true

		case "right", "l":
			p.selected = (p.selected + 1) % ButtonCount
			return nil, true

		case "tab":
			p.selected = (p.selected + 1) % ButtonCount
			return nil, true

		case "shift+tab":
			p.selected = (p.selected - 1 + ButtonCount) % ButtonCount
			return nil, true

		case "enter", " ":
			return p.handleSelect(), true

		case "esc", "n":
			// Cancel and close
			action := p.action
			targetID := p.targetID
			p.Hide()
			return func() tea.Msg {
				return ConfirmResponseMsg{
					Action:    action,
					TargetID:  targetID,
					Confirmed: false,
				}
			}, true

		case "y":
			// Quick confirm
			p.selected = ButtonConfirm
			return p.handleSelect(), true
		}
	}

	return nil, false
}

// handleSelect processes the current selection.
func (p *ConfirmPrompt) handleSelect() tea.Cmd {
	action := p.action
	targetID := p.targetID
	confirmed := p.selected == ButtonConfirm

	p.Hide()

	return func() tea.Msg {
		return ConfirmResponseMsg{
			Action:    action,
			TargetID:  targetID,
			Confirmed: confirmed,
		}
	}
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the confirmation prompt.
func (p *ConfirmPrompt) View() string {
	if !p.visible {
		return ""
	}

	// Calculate dimensions
	boxWidth := 56
	if p.width > 0 && p.width < 76 {
		boxWidth = p.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	// Build content
	var content strings.Builder

	content.WriteString(p.theme.ConfirmTitle.Render(p.titleText()))
	content.WriteString("\n\n")

	messageStyle := p.theme.ConfirmMessage.Width(boxWidth - 8)
	content.WriteString(messageStyle.Render(p.messageText()))
	content.WriteString("\n\n")

	// Buttons
	content.WriteString(p.renderButtons())

	// Keyboard hints
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("y=Confirm  n=Cancel  Tab=Navigate"))

	// Main box
	box := p.theme.ConfirmBox.
		Width(boxWidth).
		Render(content.String())

	// Center in terminal
	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(
			p.width, p.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return box
}

// titleText returns the dialog title for the pending action.
func (p *ConfirmPrompt) titleText() string {
	switch p.action {
	case ConfirmClearAll:
		return "Clear All Conversations"
	default:
		return "Delete Conversation"
	}
}

// messageText returns the dialog body for the pending action.
func (p *ConfirmPrompt) messageText() string {
	switch p.action {
	case ConfirmClearAll:
		return "Remove all " + util.IntToString(p.count) +
			" conversations? This cannot be undone."
	default:
		title := p.title
		if title == "" {
			title = "this conversation"
		} else {
			title = `"` + util.TruncateRunes(title, 32) + `"`
		}
		return "Delete " + title + "? This cannot be undone."
	}
}

// renderButtons renders the button row.
func (p *ConfirmPrompt) renderButtons() string {
	confirmLabel := "Delete"
	if p.action == ConfirmClearAll {
		confirmLabel = "Clear All"
	}

	// Destructive confirm gets a rose background when active
	confirmActive := p.theme.ConfirmButtonActive.Background(styles.Rose)

	var buttons []string

	if p.selected == ButtonConfirm {
		buttons = append(buttons, confirmActive.Render(confirmLabel))
	} else {
		buttons = append(buttons, p.theme.ConfirmButton.Render(confirmLabel))
	}

	if p.selected == ButtonCancel {
		buttons = append(buttons, p.theme.ConfirmButtonActive.Render("Cancel"))
	} else {
		buttons = append(buttons, p.theme.ConfirmButton.Render("Cancel"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}
