// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation workspace of the TUI.
//
// This file has two halves: the async operation commands that run
// synchronization work off the UI thread, and the slash command handler
// registry that maps typed /commands onto them.
package chat

import (
	"context"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aide-tui/internal/export"
	"github.com/jeranaias/aide-tui/internal/session"
)

// =============================================================================
// ASYNC OPERATION COMMANDS
// =============================================================================

// BootstrapCmd loads the conversation list and user memory on startup.
// The UI stays interactive while the initial fetch runs.
func BootstrapCmd(sess *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return NewBootstrapDoneMsg(sess.Bootstrap(context.Background()))
	}
}

// SwitchCmd activates the conversation with the given id, lazily loading
// its history on first visit.
func SwitchCmd(sess *session.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return NewSwitchDoneMsg(id, sess.Switch(context.Background(), id))
	}
}

// CreateCmd starts a new conversation and makes it current.
func CreateCmd(sess *session.Manager) tea.Cmd {
	return func() tea.Msg {
		conv, err := sess.Create(context.Background())
		id := ""
		if conv != nil {
			id = conv.ID
		}
		return NewCreateDoneMsg(id, err)
	}
}

// SendCmd runs a full message exchange. No deadline is applied: the
// backend decides how long an answer may take, and the UI stays
// responsive because the wait happens here, off the Update loop.
func SendCmd(sess *session.Manager, text string) tea.Cmd {
	return func() tea.Msg {
		return NewSendDoneMsg(sess.Send(context.Background(), text))
	}
}

// DeleteCmd removes the conversation with the given id, backend first.
func DeleteCmd(sess *session.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return NewDeleteDoneMsg(id, sess.Delete(context.Background(), id))
	}
}

// ClearAllCmd deletes every conversation.
func ClearAllCmd(sess *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return NewClearAllDoneMsg(sess.ClearAll(context.Background()))
	}
}

// ExportCmd fetches the full transcript for a conversation from the
// backend and writes it to disk in the requested format.
func ExportCmd(exporter Exporter, id, format, dir string) tea.Cmd {
	return func() tea.Msg {
		data, err := exporter.ExportChat(context.Background(), id)
		if err != nil {
			return NewExportDoneMsg("", err)
		}

		opts := export.DefaultOptions()
		if dir != "" {
			opts.OutputDir = dir
		}

		ex, err := export.ForFormat(format, opts)
		if err != nil {
			return NewExportDoneMsg("", err)
		}

		path, err := export.ExportToFile(data, ex, opts)
		return NewExportDoneMsg(path, err)
	}
}

// CopyCmd places text on the system clipboard.
func CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return NewCopyDoneMsg(clipboard.WriteAll(text))
	}
}

// waitForSessionEvent blocks until the synchronization layer pushes the
// next event. The handler re-arms it after every delivery, so exactly
// one pump is outstanding at a time.
func waitForSessionEvent(events <-chan SessionEventMsg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// slashCommand mutates the model in response to one typed /command and
// may hand back follow-up work as a tea.Cmd.
type slashCommand func(m *Model, args []string) (tea.Model, tea.Cmd)

// slashCommands maps each command name and alias to its handler.
var slashCommands = map[string]slashCommand{
	// Meta
	"help": slashHelp,
	"h":    slashHelp,
	"?":    slashHelp,
	"quit": slashQuit,
	"q":    slashQuit,
	"exit": slashQuit,

	// Conversations
	"new":    slashNew,
	"n":      slashNew,
	"delete": slashDelete,
	"del":    slashDelete,
	"clear":  slashClear,

	// Transcript
	"copy":   slashCopy,
	"cp":     slashCopy,
	"export": slashExport,
	"e":      slashExport,

	// Information
	"memory":  slashMemory,
	"mem":     slashMemory,
	"status":  slashStatus,
	"version": slashVersion,
	"ver":     slashVersion,
}

// commandHelp lists every command once, in display order, for the help
// overlay. Aliases are deliberately omitted to keep the overlay short.
var commandHelp = []struct {
	Name string
	Desc string
}{
	{"/help", "Show this overlay"},
	{"/new", "Start a new conversation"},
	{"/delete", "Delete the current conversation"},
	{"/clear", "Delete all conversations"},
	{"/copy", "Copy the last reply to the clipboard"},
	{"/export [md|json]", "Export the current conversation"},
	{"/memory", "Show remembered facts"},
	{"/status", "Show connection and session state"},
	{"/version", "Show version information"},
	{"/quit", "Exit aide"},
}

// runSlash strips the leading slash, looks the command up, and runs it.
func (m Model) runSlash(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	fields := strings.Fields(content)
	if len(fields) == 0 {
		return m, nil
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if handler, ok := slashCommands[name]; ok {
		return handler(&m, fields[1:])
	}

	m.toasts.AddError("Unknown command '/" + name + "'. Type /help for the list.")
	return m, nil
}

// =============================================================================
// META COMMANDS
// =============================================================================

func slashHelp(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.showHelp = true
	return *m, nil
}

func slashQuit(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return *m, tea.Quit
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func slashNew(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return *m, CreateCmd(m.session)
}

func slashDelete(m *Model, args []string) (tea.Model, tea.Cmd) {
	id := m.session.CurrentID()
	if len(args) > 0 {
		id = args[0]
	}
	m.showDeletePrompt(id)
	return *m, nil
}

func slashClear(m *Model, _ []string) (tea.Model, tea.Cmd) {
	count := len(m.session.Conversations())
	if count == 0 {
		m.toasts.AddStatus("Nothing to clear")
		return *m, nil
	}

	m.confirm.ShowClearAll(count)
	return *m, nil
}

// =============================================================================
// TRANSCRIPT COMMANDS
// =============================================================================

func slashCopy(m *Model, _ []string) (tea.Model, tea.Cmd) {
	reply := m.lastReply()
	if reply == "" {
		m.toasts.AddWarning("No reply to copy yet")
		return *m, nil
	}
	return *m, CopyCmd(reply)
}

func slashExport(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.exporter == nil {
		m.toasts.AddError("Export is not available")
		return *m, nil
	}

	id := m.session.CurrentID()
	if id == "" {
		m.toasts.AddWarning("No conversation to export")
		return *m, nil
	}

	format := m.exportFormat
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}
	switch format {
	case "", "md", "markdown", "json":
	default:
		m.toasts.AddError("Unknown format '" + format + "'. Usage: /export [md|json]")
		return *m, nil
	}

	m.toasts.AddStatus("Exporting conversation...")
	return *m, ExportCmd(m.exporter, id, format, m.exportDir)
}

// =============================================================================
// INFORMATION COMMANDS
// =============================================================================

func slashMemory(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.showMemory = true
	return *m, nil
}

func slashStatus(m *Model, _ []string) (tea.Model, tea.Cmd) {
	conn := "offline"
	if m.connected {
		conn = "online"
	}

	state := "idle"
	if m.sending {
		state = "waiting for reply"
	}

	summary := strings.Join([]string{
		"Backend " + conn,
		formatCount(len(m.session.Conversations()), "conversation"),
		state,
	}, " - ")

	m.toasts.AddStatus(summary)
	return *m, nil
}

func slashVersion(m *Model, _ []string) (tea.Model, tea.Cmd) {
	version := m.version
	if version == "" {
		version = "dev"
	}
	m.toasts.AddStatus("aide " + version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")")
	return *m, nil
}
