// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation data model for aide.
//
// This package holds the domain types shared by the store, the session
// manager, and the presentation layers: Conversation (titled, ordered
// message sequence with recency metadata), Message (immutable single
// turn of role, content, and timestamp), LoadState (tri-state history
// marker), and Memory (read-only key/value facts from the backend).
//
// A conversation accumulates turns:
//
//	c := model.NewConversation()
//	c.AddMessage(model.NewMessage(model.RoleUser, "Hello"))
//
// The load state distinguishes "never fetched" from "fetched but empty",
// which drives both the lazy history fetch and the loading affordance:
//
//	if c.History == model.HistoryNotLoaded {
//	    // fetch history before rendering
//	}
package model
