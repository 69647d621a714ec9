// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the aide TUI.

The chat package implements a terminal-based chat interface using the
Bubble Tea framework. All conversation state lives in the session
manager; this package renders projections of it and turns user input
into asynchronous session operations.

model.go holds the central Bubble Tea model: the session event pump
bridging manager hooks into the update loop, focus handling between the
message input and the conversation list, the transcript viewport,
connectivity tracking from operation results, and confirmation dialogs
for destructive operations.

view.go renders the complete interface: the header with conversation
title and connectivity badge, the transcript area states (loading,
welcome, empty, messages), the help and memory overlays, and the
non-blocking toast overlay in the bottom-right corner.

commands.go maps slash-command names to handlers: /help, /new, /delete,
/clear, /copy, /export, /memory, /status, and /version.

# Wiring

A model is bound to a session manager and run as a Bubble Tea program;
main.go owns the surrounding Run loop and error exit:

	client := api.NewClient("http://localhost:8000/api")
	sess := session.NewManager(store.NewStore(), client)
	m := chat.New(chat.Options{Session: sess, Exporter: client, Version: "1.0.0"})
	p := tea.NewProgram(m, tea.WithAltScreen())
*/
package chat
