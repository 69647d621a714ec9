// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation data model for aide.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// ROLE
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant is a reply from the assistant, including the synthetic
	// error replies substituted when an exchange fails.
	RoleAssistant Role = "assistant"
)

// displayNames maps each known role to its transcript label.
var displayNames = map[Role]string{
	RoleUser:      "You",
	RoleAssistant: "Assistant",
}

// String returns the wire form of the role.
func (r Role) String() string { return string(r) }

// DisplayName returns the human-readable name for transcript rendering.
// Unknown roles fall back to their wire form.
func (r Role) DisplayName() string { return cmp.Or(displayNames[r], string(r)) }

// Valid reports whether the role is one the client understands.
func (r Role) Valid() bool {
	_, ok := displayNames[r]
	return ok
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single turn in a conversation. Messages are immutable once
// created and belong to exactly one conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a generated id and the current time.
func NewMessage(role Role, content string) *Message { return NewMessageAt(role, content, time.Now()) }

// NewMessageAt creates a message with an explicit timestamp, used when
// hydrating history fetched from the backend.
func NewMessageAt(role Role, content string, at time.Time) *Message {
	return &Message{ID: generateMessageID(), Role: role, Content: content, Timestamp: at}
}

// Preview returns a single-line preview of the message content, at most
// n runes long.
func (m *Message) Preview(n int) string { return util.TruncateRunes(util.CollapseSpace(m.Content), n) }

// IsUser reports whether the message was authored by the user.
func (m *Message) IsUser() bool { return m.Role == RoleUser }

// generateMessageID returns a unique message identifier.
func generateMessageID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a timestamp-derived id if the system RNG fails.
		return "msg_" + util.Int64ToString(time.Now().UnixNano())
	}
	return "msg_" + hex.EncodeToString(b)
}
