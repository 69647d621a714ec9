// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for aide.
//
// This package implements all CLI commands for the aide TUI application,
// providing both interactive and non-interactive modes against the
// assistant backend plus the local conversation archive.
//
// Parse reads the command line into a Command plus an Args bundle, and a
// Handle* function runs each subcommand. main.go wires the two with a
// dispatch table:
//
//	cmd, args := cli.Parse()
//	if handle, ok := handlers[cmd]; ok {
//	    handle(args)
//	}
//
// The --json flag switches every command to a stable JSONResponse
// envelope for scripted use.
//
// Backend commands (talk to the assistant):
//   - ask: One-shot question, answer printed and exit
//   - chat: Interactive chat session (REPL)
//   - chats: List conversations with previews
//   - export: Export a conversation transcript to a file
//   - memory: Show and edit assistant memory
//
// Local commands (work offline):
//   - search: Full-text search over the local archive
//   - stats: Usage statistics (backend and archive)
//   - config: Read and write settings from the command line
package cli
