// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation workspace of the TUI.
//
// This file defines all Bubble Tea message types used by the chat view.
// Messages fall into two groups: session events pushed by the
// synchronization layer, and completion notices returned by the async
// operation commands in commands.go.
package chat

// =============================================================================
// SESSION EVENTS
// =============================================================================

// SessionEventKind identifies which slice of UI state a session event
// invalidates.
type SessionEventKind int

const (
	// SessionEventConversations means the conversation list changed:
	// membership, ordering, titles, or the active selection.
	SessionEventConversations SessionEventKind = iota

	// SessionEventTranscript means the current transcript changed.
	SessionEventTranscript

	// SessionEventSendState means the in-flight send flag flipped.
	SessionEventSendState

	// SessionEventNotice carries a short user-facing failure notice.
	SessionEventNotice

	// SessionEventNavCollapse fires after a switch completes so narrow
	// layouts can put the conversation list away.
	SessionEventNavCollapse
)

// SessionEventMsg is delivered whenever the synchronization layer reports
// a state change. Events arrive through a buffered channel pumped by
// waitForSessionEvent, one message per Update pass.
type SessionEventMsg struct {
	Kind SessionEventKind

	// Sending is valid for SessionEventSendState.
	Sending bool

	// Notice is valid for SessionEventNotice.
	Notice string
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// BootstrapDoneMsg reports the initial load of the conversation list and
// user memory.
type BootstrapDoneMsg struct {
	Err error
}

// SwitchDoneMsg reports activation of a conversation, including its lazy
// history load when that was still pending.
type SwitchDoneMsg struct {
	ID  string
	Err error
}

// CreateDoneMsg reports creation of a new conversation.
type CreateDoneMsg struct {
	ID  string
	Err error
}

// SendDoneMsg reports completion of a message exchange. On failure the
// synchronization layer has already appended the error reply and raised
// a notice, so handlers only adjust connectivity state here.
type SendDoneMsg struct {
	Err error
}

// DeleteDoneMsg reports deletion of a conversation.
type DeleteDoneMsg struct {
	ID  string
	Err error
}

// ClearAllDoneMsg reports the delete-everything sweep.
type ClearAllDoneMsg struct {
	Err error
}

// ExportDoneMsg reports a transcript export. Path is the file written on
// success.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// CopyDoneMsg reports copying the last reply to the system clipboard.
type CopyDoneMsg struct {
	Err error
}

// ConfigReloadedMsg reports that the configuration file changed on disk
// and the new values were loaded.
type ConfigReloadedMsg struct{}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewBootstrapDoneMsg creates a bootstrap completion message.
func NewBootstrapDoneMsg(err error) BootstrapDoneMsg {
	return BootstrapDoneMsg{Err: err}
}

// NewSwitchDoneMsg creates a switch completion message.
func NewSwitchDoneMsg(id string, err error) SwitchDoneMsg {
	return SwitchDoneMsg{ID: id, Err: err}
}

// NewCreateDoneMsg creates a create completion message.
func NewCreateDoneMsg(id string, err error) CreateDoneMsg {
	return CreateDoneMsg{ID: id, Err: err}
}

// NewSendDoneMsg creates a send completion message.
func NewSendDoneMsg(err error) SendDoneMsg {
	return SendDoneMsg{Err: err}
}

// NewDeleteDoneMsg creates a delete completion message.
func NewDeleteDoneMsg(id string, err error) DeleteDoneMsg {
	return DeleteDoneMsg{ID: id, Err: err}
}

// NewClearAllDoneMsg creates a clear-all completion message.
func NewClearAllDoneMsg(err error) ClearAllDoneMsg {
	return ClearAllDoneMsg{Err: err}
}

// NewExportDoneMsg creates an export completion message.
func NewExportDoneMsg(path string, err error) ExportDoneMsg {
	return ExportDoneMsg{Path: path, Err: err}
}

// NewCopyDoneMsg creates a clipboard copy completion message.
func NewCopyDoneMsg(err error) CopyDoneMsg {
	return CopyDoneMsg{Err: err}
}
