// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive provides a local append-only mirror of completed exchanges.
//
// The archive records every confirmed user/assistant exchange into a SQLite
// database under the config directory. It exists for offline recall (the
// search command) and as a local safety net; the synchronization pipeline
// never reads from it, so the backend remains the single source of truth
// for conversation state.
//
// # Key Types
//
//   - Archive: SQLite-backed exchange store with full-text search
//   - Exchange: One archived user/assistant exchange
//   - SearchResult: An exchange matched by a search query
//   - Stats: Archive size and coverage summary
//
// # Usage
//
// Open the archive and record an exchange:
//
//	arc, err := archive.Open(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arc.Close()
//
//	err = arc.RecordExchange(chatID, title, userMsg, assistantMsg)
//
// Search it offline:
//
//	results, err := arc.Search("recursion", 20)
package archive
