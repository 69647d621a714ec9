// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION PROMPT TESTS
// =============================================================================

func TestNewConfirmPrompt(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)

	if prompt.IsVisible() {
		t.Error("NewConfirmPrompt() should start hidden")
	}
	if prompt.selected != ButtonCancel {
		t.Error("NewConfirmPrompt() should default to Cancel")
	}
}

func TestConfirmPromptShowDelete(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)

	prompt.ShowDelete("chat_123", "Rust lifetimes")

	if !prompt.IsVisible() {
		t.Error("ShowDelete() should make the prompt visible")
	}
	if prompt.Action() != ConfirmDelete {
		t.Error("ShowDelete() should set the delete action")
	}
	if prompt.selected != ButtonCancel {
		t.Error("destructive prompts should default to Cancel")
	}
}

func TestConfirmPromptShowClearAll(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)

	prompt.ShowClearAll(7)

	if !prompt.IsVisible() {
		t.Error("ShowClearAll() should make the prompt visible")
	}
	if prompt.Action() != ConfirmClearAll {
		t.Error("ShowClearAll() should set the clear-all action")
	}
}

func TestConfirmPromptHide(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)

	prompt.ShowDelete("chat_123", "title")
	prompt.Hide()

	if prompt.IsVisible() {
		t.Error("Hide() should hide the prompt")
	}
	if prompt.View() != "" {
		t.Error("hidden prompt should render nothing")
	}
}

func TestConfirmPromptNavigation(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowDelete("chat_123", "title")

	// Starts on Cancel; tab wraps to Confirm.
	_, handled := prompt.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !handled {
		t.Fatal("tab should be consumed while visible")
	}
	if prompt.selected != ButtonConfirm {
		t.Errorf("after tab selected = %d, want ButtonConfirm", prompt.selected)
	}

	_, _ = prompt.Update(tea.KeyMsg{Type: tea.KeyTab})
	if prompt.selected != ButtonCancel {
		t.Errorf("after second tab selected = %d, want ButtonCancel", prompt.selected)
	}
}

func TestConfirmPromptQuickConfirm(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowDelete("chat_123", "title")

	cmd, handled := prompt.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if !handled {
		t.Fatal("'y' should be consumed while visible")
	}
	if cmd == nil {
		t.Fatal("'y' should produce a response command")
	}

	msg, ok := cmd().(ConfirmResponseMsg)
	if !ok {
		t.Fatalf("response = %T, want ConfirmResponseMsg", cmd())
	}
	if !msg.Confirmed {
		t.Error("'y' should confirm the action")
	}
	if msg.TargetID != "chat_123" {
		t.Errorf("response TargetID = %q, want %q", msg.TargetID, "chat_123")
	}
	if msg.Action != ConfirmDelete {
		t.Error("response should carry the delete action")
	}
	if prompt.IsVisible() {
		t.Error("prompt should hide after a response")
	}
}

func TestConfirmPromptEscapeCancels(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowClearAll(3)

	cmd, handled := prompt.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if !handled {
		t.Fatal("escape should be consumed while visible")
	}

	msg, ok := cmd().(ConfirmResponseMsg)
	if !ok {
		t.Fatalf("response = %T, want ConfirmResponseMsg", cmd())
	}
	if msg.Confirmed {
		t.Error("escape should not confirm the action")
	}
	if msg.Action != ConfirmClearAll {
		t.Error("response should carry the clear-all action")
	}
}

func TestConfirmPromptEnterOnCancel(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowDelete("chat_123", "title")

	// Default selection is Cancel.
	cmd, _ := prompt.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(ConfirmResponseMsg)
	if !ok {
		t.Fatalf("response = %T, want ConfirmResponseMsg", cmd())
	}
	if msg.Confirmed {
		t.Error("enter on Cancel should not confirm")
	}
}

func TestConfirmPromptIgnoredWhenHidden(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)

	_, handled := prompt.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if handled {
		t.Error("hidden prompt should not consume key events")
	}
}

func TestConfirmPromptViewDelete(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowDelete("chat_123", "Rust lifetimes")
	prompt.SetSize(100, 30)

	display := prompt.View()
	if !strings.Contains(display, "Delete Conversation") {
		t.Error("delete prompt should show its title")
	}
	if !strings.Contains(display, "Rust lifetimes") {
		t.Error("delete prompt should name the conversation")
	}
	if !strings.Contains(display, "cannot be undone") {
		t.Error("delete prompt should warn about permanence")
	}
}

func TestConfirmPromptViewClearAll(t *testing.T) {
	theme := styles.NewTheme()
	prompt := NewConfirmPrompt(theme)
	prompt.ShowClearAll(5)
	prompt.SetSize(100, 30)

	display := prompt.View()
	if !strings.Contains(display, "Clear All Conversations") {
		t.Error("clear-all prompt should show its title")
	}
	if !strings.Contains(display, "all 5 conversations") {
		t.Error("clear-all prompt should state how many conversations go away")
	}
}
