// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the in-memory conversation state for aide.
//
// The store is the client-side source of truth: the session manager writes
// backend-confirmed state into it, and the view layer projects snapshots
// out of it. It holds conversations in a map keyed by id and serves them
// in recency order.
//
// # Key Types
//
//   - Store: Thread-safe map of conversations with recency-ordered listing
//   - ConversationError: Comparable error type, with ErrNotFound sentinel
//
// # Usage
//
// Create a store and populate it:
//
//	st := store.NewStore()
//	st.Upsert(conv)
//
// List conversations most recently updated first:
//
//	for _, conv := range st.List() {
//		fmt.Println(conv.Title)
//	}
//
// Append a message to an existing conversation:
//
//	err := st.AppendMessage(id, model.NewMessage(model.RoleUser, "hello"))
//	if errors.Is(err, store.ErrNotFound) {
//		// conversation was deleted meanwhile
//	}
//
// # Snapshot Semantics
//
// Every read returns deep copies and every write copies its input, so no
// caller ever holds a pointer into store-owned state. Renderers can walk a
// snapshot while the session manager mutates the store concurrently.
package store
