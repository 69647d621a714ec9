// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation workspace of the TUI.
//
// This file defines keyboard bindings for the chat workspace, along with
// the context-aware help catalog rendered by the /help overlay.
package chat

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/aide-tui/internal/cmp"
)

// =============================================================================
// WORKSPACE KEY MAP
// =============================================================================

// KeyMap holds every binding the chat workspace answers to. Bindings
// carry their own help text, so the overlay stays in sync with the keys.
type KeyMap struct {
	Send       key.Binding
	NewChat    key.Binding
	DeleteChat key.Binding
	FocusList  key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Escape     key.Binding
	Quit       key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default key bindings for the chat workspace.
// The list bindings (Up/Down/Select) only apply while the conversation
// list has focus, so they never collide with typing.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send:       bind("Enter", "send message", "enter"),
		NewChat:    bind("C-n", "new conversation", "ctrl+n"),
		DeleteChat: bind("C-d", "delete conversation", "ctrl+d"),
		FocusList:  bind("Tab", "focus conversation list", "tab"),
		Up:         bind("up/k", "previous conversation", "up", "k"),
		Down:       bind("down/j", "next conversation", "down", "j"),
		Select:     bind("Enter", "open conversation", "enter"),
		PageUp:     bind("PgUp", "scroll transcript up", "pgup"),
		PageDown:   bind("PgDn", "scroll transcript down", "pgdown"),
		Escape:     bind("Esc", "dismiss / back to input", "esc"),
		Quit:       bind("C-c", "quit", "ctrl+c"),
	}
}

// ShortHelp returns the bindings shown in the one-line help view.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Send, km.NewChat, km.FocusList, km.Quit}
}

// FullHelp returns the bindings for the expanded help view, grouped as
// conversations, navigation, general.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.NewChat, km.DeleteChat, km.Select},
		{km.FocusList, km.Up, km.Down, km.PageUp, km.PageDown},
		{km.Send, km.Escape, km.Quit},
	}
}

// =============================================================================
// CONTEXT-AWARE HELP CATALOG
// =============================================================================

// HelpContext names a UI state the help overlay can be opened from. The
// overlay lists only the bindings live in that state, the way lazygit
// scopes its keybinding help.
type HelpContext string

const (
	// ContextInput is the default state - typing in the message input
	ContextInput HelpContext = "input"
	// ContextList is when the conversation list has focus
	ContextList HelpContext = "list"
	// ContextConfirm is when a confirmation prompt is visible
	ContextConfirm HelpContext = "confirm"
)

// HelpCategory is the section heading a help row sorts under.
type HelpCategory string

const (
	CategoryConversations HelpCategory = "Conversations"
	CategoryNavigation    HelpCategory = "Navigation"
	CategoryMessages      HelpCategory = "Messages"
	CategoryGeneral       HelpCategory = "General"
)

// HelpItem is one row of the help overlay.
type HelpItem struct {
	Key      string        // Display form, e.g. "up/k" or "C-c"
	Desc     string        // What the key does
	Contexts []HelpContext // States where the binding is live
	Category HelpCategory  // Section the row sorts under
}

// helpItems is the full help catalog, before context filtering.
func helpItems() []HelpItem {
	// Context sets shared by several rows
	all := []HelpContext{ContextInput, ContextList, ContextConfirm}
	workspace := []HelpContext{ContextInput, ContextList}
	typingOnly := []HelpContext{ContextInput}
	listOnly := []HelpContext{ContextList}
	confirmOnly := []HelpContext{ContextConfirm}

	return []HelpItem{
		{"C-n", "Start a new conversation", workspace, CategoryConversations},
		{"C-d", "Delete the selected conversation", workspace, CategoryConversations},
		{"Enter", "Open the selected conversation", listOnly, CategoryConversations},

		{"Enter", "Send the typed message", typingOnly, CategoryMessages},
		{"/command", "Run a slash command", typingOnly, CategoryMessages},

		{"Tab", "Toggle list / input focus", workspace, CategoryNavigation},
		{"up/k", "Previous conversation", listOnly, CategoryNavigation},
		{"down/j", "Next conversation", listOnly, CategoryNavigation},
		{"PgUp/PgDn", "Scroll the transcript", workspace, CategoryNavigation},
		{"Tab", "Switch between buttons", confirmOnly, CategoryNavigation},

		{"y / n", "Confirm or cancel", confirmOnly, CategoryGeneral},
		{"Esc", "Dismiss overlay / back to input", all, CategoryGeneral},
		{"C-c", "Quit", all, CategoryGeneral},
	}
}

// helpItemsFor returns the help items active in the given context. The
// help overlay only lists bindings that would do something right now.
func helpItemsFor(ctx HelpContext) []HelpItem {
	var live []HelpItem
	for _, item := range helpItems() {
		if slices.Contains(item.Contexts, ctx) {
			live = append(live, item)
		}
	}
	return live
}

// helpItemsByCategory returns the context's help items keyed by category,
// for sectioned display.
func helpItemsByCategory(ctx HelpContext) map[HelpCategory][]HelpItem {
	byCategory := make(map[HelpCategory][]HelpItem)
	for _, item := range helpItemsFor(ctx) {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	return byCategory
}

// categoryOrder fixes the section order the overlay prints.
var categoryOrder = []HelpCategory{
	CategoryConversations,
	CategoryMessages,
	CategoryNavigation,
	CategoryGeneral,
}

// contextNames maps contexts to their overlay headings.
var contextNames = map[HelpContext]string{
	ContextInput:   "Chat",
	ContextList:    "Conversation List",
	ContextConfirm: "Confirmation",
}

// contextDisplayName is the heading shown for a context.
func contextDisplayName(ctx HelpContext) string { return cmp.Or(contextNames[ctx], string(ctx)) }
