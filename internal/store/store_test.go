// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// conv builds a conversation with a fixed id and update time for ordering
// tests.
func conv(id string, updatedAt time.Time) *model.Conversation {
	return &model.Conversation{
		ID:        id,
		Title:     "Chat " + id,
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
}

// =============================================================================
// READ OPERATION TESTS
// =============================================================================

func TestNewStore_Empty(t *testing.T) {
	s := NewStore()

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("List() returned %d conversations, want 0", len(got))
	}
	if _, ok := s.MostRecent(); ok {
		t.Error("MostRecent() on empty store should report false")
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := NewStore()
	base := time.Now()

	s.Upsert(conv("chat_1", base))

	got, err := s.Get("chat_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "chat_1" {
		t.Errorf("ID = %q, want %q", got.ID, "chat_1")
	}
	if got.Title != "Chat chat_1" {
		t.Errorf("Title = %q, want %q", got.Title, "Chat chat_1")
	}

	// Upserting the same id replaces.
	replacement := conv("chat_1", base)
	replacement.Title = "Renamed"
	s.Upsert(replacement)

	got, err = s.Get("chat_1")
	if err != nil {
		t.Fatalf("Get after replace failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title after replace = %q, want %q", got.Title, "Renamed")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_Upsert_IgnoresNilAndEmptyID(t *testing.T) {
	s := NewStore()

	s.Upsert(nil)
	s.Upsert(&model.Conversation{})

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing id = %v, want ErrNotFound", err)
	}
}

func TestStore_Contains(t *testing.T) {
	s := NewStore()
	s.Upsert(conv("chat_1", time.Now()))

	if !s.Contains("chat_1") {
		t.Error("Contains should report true for a stored id")
	}
	if s.Contains("chat_2") {
		t.Error("Contains should report false for an unknown id")
	}
}

// =============================================================================
// ORDERING TESTS
// =============================================================================

func TestStore_List_MostRecentFirst(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Upsert(conv("chat_old", base.Add(-2*time.Hour)))
	s.Upsert(conv("chat_new", base))
	s.Upsert(conv("chat_mid", base.Add(-time.Hour)))

	got := s.List()
	want := []string{"chat_new", "chat_mid", "chat_old"}

	if len(got) != len(want) {
		t.Fatalf("List() returned %d conversations, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestStore_List_TieBrokenByID(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Upsert(conv("chat_b", at))
	s.Upsert(conv("chat_a", at))
	s.Upsert(conv("chat_c", at))

	got := s.List()
	want := []string{"chat_a", "chat_b", "chat_c"}

	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestStore_MostRecent(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Upsert(conv("chat_old", base.Add(-time.Hour)))
	s.Upsert(conv("chat_new", base))

	got, ok := s.MostRecent()
	if !ok {
		t.Fatal("MostRecent() reported empty store")
	}
	if got.ID != "chat_new" {
		t.Errorf("MostRecent().ID = %q, want %q", got.ID, "chat_new")
	}
}

func TestStore_IDs(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Upsert(conv("chat_second", base.Add(-time.Minute)))
	s.Upsert(conv("chat_first", base))

	got := s.IDs()
	want := []string{"chat_first", "chat_second"}

	if len(got) != len(want) {
		t.Fatalf("IDs() returned %d ids, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("IDs()[%d] = %q, want %q", i, got[i], id)
		}
	}
}

// =============================================================================
// WRITE OPERATION TESTS
// =============================================================================

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Upsert(conv("chat_1", time.Now()))

	s.Remove("chat_1")

	if s.Contains("chat_1") {
		t.Error("conversation should not exist after Remove")
	}

	// Removing an absent id is a no-op.
	s.Remove("chat_1")
	s.Remove("never-existed")

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_AppendMessage(t *testing.T) {
	s := NewStore()
	past := time.Now().Add(-time.Hour)
	s.Upsert(conv("chat_1", past))

	if err := s.AppendMessage("chat_1", model.NewMessage(model.RoleUser, "first")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := s.AppendMessage("chat_1", model.NewMessage(model.RoleAssistant, "second")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	got, err := s.Get("chat_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Append order is preserved.
	if got.MessageCount() != 2 {
		t.Fatalf("MessageCount = %d, want 2", got.MessageCount())
	}
	if got.Messages[0].Content != "first" || got.Messages[1].Content != "second" {
		t.Errorf("messages out of order: %q, %q", got.Messages[0].Content, got.Messages[1].Content)
	}

	// UpdatedAt advanced past its previous value.
	if !got.UpdatedAt.After(past) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, past)
	}
	if got.History != model.HistoryLoaded {
		t.Errorf("History = %v, want loaded", got.History)
	}
	if got.LastMessage != "second" {
		t.Errorf("LastMessage = %q, want %q", got.LastMessage, "second")
	}
}

func TestStore_AppendMessage_NotFound(t *testing.T) {
	s := NewStore()

	err := s.AppendMessage("ghost", model.NewMessage(model.RoleUser, "hello"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendMessage on missing id = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Error("failed append must not create a conversation")
	}
}

func TestStore_SetTitle(t *testing.T) {
	s := NewStore()
	past := time.Now().Add(-time.Hour)
	s.Upsert(conv("chat_1", past))

	if err := s.SetTitle("chat_1", "Renamed"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	got, _ := s.Get("chat_1")
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want %q", got.Title, "Renamed")
	}
	if !got.UpdatedAt.After(past) {
		t.Error("SetTitle should bump UpdatedAt")
	}

	if err := s.SetTitle("ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTitle on missing id = %v, want ErrNotFound", err)
	}
}

func TestStore_SetHistory(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Upsert(conv("chat_1", at))

	msgs := []*model.Message{
		model.NewMessage(model.RoleUser, "question"),
		model.NewMessage(model.RoleAssistant, "answer"),
	}
	if err := s.SetHistory("chat_1", msgs, model.HistoryLoaded); err != nil {
		t.Fatalf("SetHistory failed: %v", err)
	}

	got, _ := s.Get("chat_1")
	if got.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2", got.MessageCount())
	}
	if got.History != model.HistoryLoaded {
		t.Errorf("History = %v, want loaded", got.History)
	}

	// Installing history must not reorder the sidebar.
	if !got.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want unchanged %v", got.UpdatedAt, at)
	}

	// Empty history marks the loaded-empty state.
	if err := s.SetHistory("chat_1", nil, model.HistoryLoadedEmpty); err != nil {
		t.Fatalf("SetHistory failed: %v", err)
	}
	got, _ = s.Get("chat_1")
	if got.History != model.HistoryLoadedEmpty {
		t.Errorf("History = %v, want loaded-empty", got.History)
	}

	if err := s.SetHistory("ghost", nil, model.HistoryLoaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetHistory on missing id = %v, want ErrNotFound", err)
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.Upsert(conv("chat_1", time.Now()))
	s.Upsert(conv("chat_2", time.Now()))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}

// =============================================================================
// SNAPSHOT ISOLATION TESTS
// =============================================================================

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	original := conv("chat_1", time.Now())
	s.Upsert(original)

	// Mutating the upserted value must not reach the store.
	original.Title = "mutated after upsert"
	got, _ := s.Get("chat_1")
	if got.Title == "mutated after upsert" {
		t.Error("Upsert must copy its input")
	}

	// Mutating a returned snapshot must not reach the store.
	got.Title = "mutated snapshot"
	got.Messages = append(got.Messages, model.NewMessage(model.RoleUser, "sneaky"))

	fresh, _ := s.Get("chat_1")
	if fresh.Title == "mutated snapshot" {
		t.Error("Get must return a copy")
	}
	if fresh.MessageCount() != 0 {
		t.Error("snapshot mutation leaked messages into the store")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Upsert(conv("chat_shared", time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch n % 3 {
				case 0:
					s.AppendMessage("chat_shared", model.NewMessage(model.RoleUser, "ping"))
				case 1:
					s.List()
				default:
					s.Get("chat_shared")
				}
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get("chat_shared")
	if err != nil {
		t.Fatalf("Get after concurrent access failed: %v", err)
	}
	if got.MessageCount() == 0 {
		t.Error("expected appended messages to survive concurrent access")
	}
}
