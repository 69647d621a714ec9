// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the in-memory conversation state for aide.
package store

import (
	"sync"

	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store is the client-side source of truth for conversations. It is a
// write-through cache of backend state: mutations land here only after the
// backend has confirmed them (or, for message appends, as part of the
// optimistic exchange flow owned by the session manager).
//
// All methods are safe for concurrent use. Reads return deep copies, so a
// snapshot handed to a renderer never changes underneath it.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*model.Conversation),
	}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns all conversations ordered by UpdatedAt descending. Equal
// timestamps are broken by ascending id so the ordering is deterministic.
func (s *Store) List() []*model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		list = append(list, conv.Clone())
	}
	model.SortByRecency(list)
	return list
}

// Get retrieves a conversation by id. Returns ErrNotFound if no
// conversation with that id exists.
func (s *Store) Get(id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

// Contains reports whether a conversation with the given id exists. The
// session manager calls this after every suspension point to detect
// conversations deleted while a request was in flight.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.conversations[id]
	return ok
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations)
}

// MostRecent returns the conversation with the greatest UpdatedAt, or
// false if the store is empty. Ties resolve the same way List does.
func (s *Store) MostRecent() (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *model.Conversation
	for _, conv := range s.conversations {
		if best == nil || model.MoreRecent(conv, best) {
			best = conv
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Clone(), true
}

// IDs returns the ids of all stored conversations in List order.
func (s *Store) IDs() []string {
	list := s.List()
	ids := make([]string, len(list))
	for i, conv := range list {
		ids[i] = conv.ID
	}
	return ids
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Upsert inserts a conversation or replaces an existing one with the same
// id. The store keeps its own copy, so later mutations of the argument do
// not leak in. A nil conversation or empty id is ignored.
func (s *Store) Upsert(conv *model.Conversation) {
	if conv == nil || conv.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.ID] = conv.Clone()
}

// Remove deletes a conversation by id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
}

// AppendMessage appends a message to the identified conversation, bumping
// its UpdatedAt. Returns ErrNotFound if the conversation does not exist;
// the message is discarded in that case.
func (s *Store) AppendMessage(id string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conv.AddMessage(msg)
	return nil
}

// SetTitle replaces the title of the identified conversation, bumping its
// UpdatedAt. Returns ErrNotFound if the conversation does not exist.
func (s *Store) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conv.SetTitle(title)
	return nil
}

// SetHistory installs fetched history for the identified conversation and
// records the resulting load state. Unlike AppendMessage this does not
// touch UpdatedAt: viewing a conversation must not reorder the sidebar.
// Returns ErrNotFound if the conversation does not exist.
func (s *Store) SetHistory(id string, msgs []*model.Message, state model.LoadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conv.Messages = msgs
	conv.History = state
	return nil
}

// Reset discards every stored conversation.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make(map[string]*model.Conversation)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
