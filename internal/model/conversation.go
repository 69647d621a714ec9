// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"time"

	"github.com/jeranaias/aide-tui/internal/util"
)

// DefaultTitle is the title given to a conversation before the first
// exchange derives a real one.
const DefaultTitle = "New Chat"

// =============================================================================
// HISTORY LOAD STATE
// =============================================================================

// LoadState tracks whether a conversation's message history has been
// fetched from the backend. The distinction between "never fetched" and
// "fetched but empty" matters: the first renders a loading affordance and
// triggers a fetch on selection, the second renders a welcome screen and
// must not refetch.
type LoadState int

const (
	// HistoryNotLoaded means no history fetch has completed yet.
	HistoryNotLoaded LoadState = iota

	// HistoryLoadedEmpty means a fetch completed and the backend holds no
	// messages for this conversation.
	HistoryLoadedEmpty

	// HistoryLoaded means a fetch completed and messages are present, or
	// messages have been appended locally.
	HistoryLoaded
)

// String returns a human-readable name for the load state.
func (s LoadState) String() string {
	switch s {
	case HistoryNotLoaded:
		return "not-loaded"
	case HistoryLoadedEmpty:
		return "loaded-empty"
	case HistoryLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Fetched reports whether a history fetch has completed, regardless of
// whether it returned any messages.
func (s LoadState) Fetched() bool {
	return s == HistoryLoadedEmpty || s == HistoryLoaded
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is a titled, ordered sequence of messages with recency
// metadata. Message order is append order; UpdatedAt never decreases and
// is always at or after CreatedAt.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`

	// LastMessage is the preview cached by the backend listing. It may be
	// empty; the sidebar falls back to the tail of the latest loaded
	// message.
	LastMessage string `json:"last_message,omitempty"`

	// History records whether this conversation's messages have been
	// fetched yet.
	History LoadState `json:"-"`
}

// NewConversation creates an empty conversation with a fresh time-based id
// and the default title. A locally created conversation has no remote
// history to fetch, so it starts in the loaded-empty state.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        NewConversationID(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		History:   HistoryLoadedEmpty,
	}
}

// AddMessage appends a message and bumps UpdatedAt. Append order is
// preserved exactly; appending also marks the history as loaded and
// refreshes the cached preview so list rendering never lags behind the
// transcript.
func (c *Conversation) AddMessage(m *Message) {
	c.Messages = append(c.Messages, m)
	c.History = HistoryLoaded
	c.LastMessage = m.Content
	c.touch()
}

// SetTitle replaces the title and bumps UpdatedAt.
func (c *Conversation) SetTitle(t string) {
	c.Title = t
	c.touch()
}

// touch advances UpdatedAt to now while keeping it monotonically
// non-decreasing even if the wall clock steps backwards.
func (c *Conversation) touch() {
	if now := time.Now(); now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
}

// LatestMessage returns the most recent message, or nil if none are
// loaded.
func (c *Conversation) LatestMessage() *Message {
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1]
	}
	return nil
}

// FirstUserMessage returns the earliest user-authored message, or nil.
// Title derivation reads from here.
func (c *Conversation) FirstUserMessage() *Message {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m
		}
	}
	return nil
}

// MessageCount returns the number of loaded messages.
func (c *Conversation) MessageCount() int { return len(c.Messages) }

// Preview returns a single-line preview for list display: the cached
// backend preview when present, otherwise the tail of the latest loaded
// message.
func (c *Conversation) Preview(maxLen int) string {
	if c.LastMessage != "" {
		return util.TruncateRunes(util.CollapseSpace(c.LastMessage), maxLen)
	}
	if last := c.LatestMessage(); last != nil {
		return last.Preview(maxLen)
	}
	return ""
}

// Clone returns a deep copy of the conversation. Snapshots handed to the
// presentation layer are clones, so renderers never observe a mutation
// mid-flight.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		dup := *m
		clone.Messages[i] = &dup
	}
	return &clone
}

// =============================================================================
// RECENCY ORDERING
// =============================================================================

// MoreRecent reports whether a sorts before b in recency order: greater
// UpdatedAt first, exact timestamp ties broken by ascending id so the
// ordering is deterministic.
func MoreRecent(a, b *Conversation) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

// SortByRecency orders conversations most recently updated first, in
// place.
func SortByRecency(list []*Conversation) {
	sort.Slice(list, func(i, j int) bool {
		return MoreRecent(list[i], list[j])
	})
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewConversationID returns a fresh conversation identifier. The id embeds
// the creation time in milliseconds plus a random suffix, which keeps ids
// unique for the life of a session and sortable by creation when needed.
func NewConversationID() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return "chat_" + util.Int64ToString(time.Now().UnixMilli())
	}
	return "chat_" + util.Int64ToString(time.Now().UnixMilli()) + "_" + hex.EncodeToString(b)
}
