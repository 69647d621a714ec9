// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view projects conversation state into render instructions.
package view

import (
	"time"

	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// PROJECTION CONSTANTS
// =============================================================================

const (
	// previewRunes bounds the preview derived from a loaded message tail.
	previewRunes = 60

	// emptyPreview is shown for conversations with no messages anywhere.
	emptyPreview = "Start a conversation..."
)

// =============================================================================
// LIST PROJECTION
// =============================================================================

// ListEntry is one sidebar row, fully derived and ready to render.
type ListEntry struct {
	ID        string
	Title     string
	Preview   string
	TimeLabel string
	UpdatedAt time.Time
	Active    bool
}

// ProjectList derives sidebar entries from a set of conversations. Entries
// come back most recently updated first regardless of input order, with
// the current conversation flagged. The input is not modified.
func ProjectList(conversations []*model.Conversation, currentID string, now time.Time) []ListEntry {
	sorted := make([]*model.Conversation, len(conversations))
	copy(sorted, conversations)
	model.SortByRecency(sorted)

	entries := make([]ListEntry, 0, len(sorted))
	for _, conv := range sorted {
		title := conv.Title
		if title == "" {
			title = model.DefaultTitle
		}
		entries = append(entries, ListEntry{
			ID:        conv.ID,
			Title:     title,
			Preview:   entryPreview(conv),
			TimeLabel: RelativeTime(conv.UpdatedAt, now),
			UpdatedAt: conv.UpdatedAt,
			Active:    conv.ID == currentID,
		})
	}
	return entries
}

// entryPreview picks the preview text for a sidebar row: the cached
// backend preview when present, else the tail of the latest loaded
// message, else a placeholder.
func entryPreview(conv *model.Conversation) string {
	if conv.LastMessage != "" {
		return util.CollapseSpace(conv.LastMessage)
	}
	if last := conv.LatestMessage(); last != nil {
		return util.TrailingRunes(util.CollapseSpace(last.Content), previewRunes)
	}
	return emptyPreview
}

// =============================================================================
// TRANSCRIPT PROJECTION
// =============================================================================

// TranscriptState enumerates what the transcript pane should show.
type TranscriptState int

const (
	// TranscriptEmpty means no conversation is selected.
	TranscriptEmpty TranscriptState = iota

	// TranscriptLoading means the current conversation's history has not
	// been fetched yet.
	TranscriptLoading

	// TranscriptWelcome means the current conversation has no messages;
	// the pane shows a welcome screen, optionally listing user memory.
	TranscriptWelcome

	// TranscriptMessages means the pane renders the message sequence.
	TranscriptMessages
)

// String returns a human-readable name for the transcript state.
func (s TranscriptState) String() string {
	switch s {
	case TranscriptEmpty:
		return "empty"
	case TranscriptLoading:
		return "loading"
	case TranscriptWelcome:
		return "welcome"
	case TranscriptMessages:
		return "messages"
	default:
		return "unknown"
	}
}

// TranscriptMessage is one rendered conversation turn.
type TranscriptMessage struct {
	ID        string
	Role      model.Role
	Author    string
	Content   string
	TimeLabel string
}

// MemoryItem is one user-memory fact shown on the welcome screen.
type MemoryItem struct {
	Key   string
	Value string
}

// Transcript is the full render instruction set for the main pane.
type Transcript struct {
	State          TranscriptState
	ConversationID string
	Title          string
	Messages       []TranscriptMessage
	Memory         []MemoryItem
}

// ProjectTranscript derives the transcript pane from the current
// conversation and the user's remembered facts. It reads its inputs and
// nothing else: no store writes, no fetches.
func ProjectTranscript(current *model.Conversation, memory model.Memory, now time.Time) Transcript {
	if current == nil {
		return Transcript{State: TranscriptEmpty}
	}

	if current.History == model.HistoryNotLoaded {
		return Transcript{
			State:          TranscriptLoading,
			ConversationID: current.ID,
			Title:          current.Title,
		}
	}

	if current.MessageCount() == 0 {
		return Transcript{
			State:          TranscriptWelcome,
			ConversationID: current.ID,
			Title:          current.Title,
			Memory:         projectMemory(memory),
		}
	}

	msgs := make([]TranscriptMessage, 0, current.MessageCount())
	for _, m := range current.Messages {
		msgs = append(msgs, TranscriptMessage{
			ID:        m.ID,
			Role:      m.Role,
			Author:    m.Role.DisplayName(),
			Content:   m.Content,
			TimeLabel: RelativeTime(m.Timestamp, now),
		})
	}
	return Transcript{
		State:          TranscriptMessages,
		ConversationID: current.ID,
		Title:          current.Title,
		Messages:       msgs,
	}
}

// projectMemory flattens memory into key-sorted items so the welcome
// screen renders deterministically.
func projectMemory(memory model.Memory) []MemoryItem {
	if len(memory) == 0 {
		return nil
	}
	items := make([]MemoryItem, 0, len(memory))
	for _, key := range memory.SortedKeys() {
		items = append(items, MemoryItem{Key: key, Value: memory[key]})
	}
	return items
}
