// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/session"
)

// The archive must satisfy the session manager's recorder contract.
var _ session.Recorder = (*Archive)(nil)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err, "Open should succeed in a temp dir")
	t.Cleanup(func() { a.Close() })
	return a
}

func record(t *testing.T, a *Archive, chatID, title, question, answer string) {
	t.Helper()
	at := time.Now()
	user := model.NewMessageAt(model.RoleUser, question, at)
	assistant := model.NewMessageAt(model.RoleAssistant, answer, at.Add(2*time.Second))
	require.NoError(t, a.RecordExchange(chatID, title, user, assistant))
}

// =============================================================================
// OPEN/CLOSE TESTS
// =============================================================================

// TestArchive_OpenCreatesDatabase tests that Open creates the database file
// and any missing parent directories.
func TestArchive_OpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "archive.db")

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = os.Stat(path)
	require.NoError(t, err, "database file should exist after Open")
	require.Equal(t, path, a.Path())
}

// TestArchive_OpenEmptyPath tests that an empty path is rejected.
func TestArchive_OpenEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

// TestArchive_ClosedErrors tests that operations on a closed archive fail
// with ErrClosed.
func TestArchive_ClosedErrors(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "double close should be a no-op")

	user := model.NewMessage(model.RoleUser, "hi")
	assistant := model.NewMessage(model.RoleAssistant, "hello")

	err := a.RecordExchange("chat_1", "t", user, assistant)
	require.ErrorIs(t, err, ErrClosed)

	_, err = a.Search("hi", 0)
	require.ErrorIs(t, err, ErrClosed)

	_, err = a.Stats()
	require.ErrorIs(t, err, ErrClosed)
}

// =============================================================================
// RECORDING TESTS
// =============================================================================

// TestArchive_RecordExchange tests that a recorded exchange comes back
// intact from History.
func TestArchive_RecordExchange(t *testing.T) {
	a := newTestArchive(t)

	asked := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	user := model.NewMessageAt(model.RoleUser, "What is Go?", asked)
	assistant := model.NewMessageAt(model.RoleAssistant, "A programming language.", asked.Add(time.Second))

	require.NoError(t, a.RecordExchange("chat_1", "What is Go?", user, assistant))

	exchanges, err := a.History("chat_1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)

	got := exchanges[0]
	require.Equal(t, "chat_1", got.ChatID)
	require.Equal(t, "What is Go?", got.Title)
	require.Equal(t, "What is Go?", got.UserMessage)
	require.Equal(t, "A programming language.", got.AssistantMessage)
	require.Equal(t, asked.Unix(), got.AskedAt.Unix())
	require.Equal(t, asked.Add(time.Second).Unix(), got.AnsweredAt.Unix())
	require.False(t, got.RecordedAt.IsZero())
}

// TestArchive_RecordValidation tests that malformed records are rejected.
func TestArchive_RecordValidation(t *testing.T) {
	a := newTestArchive(t)

	user := model.NewMessage(model.RoleUser, "q")
	assistant := model.NewMessage(model.RoleAssistant, "a")

	require.ErrorIs(t, a.RecordExchange("", "t", user, assistant), ErrInvalidRecord)
	require.ErrorIs(t, a.RecordExchange("chat_1", "t", nil, assistant), ErrInvalidRecord)
	require.ErrorIs(t, a.RecordExchange("chat_1", "t", user, nil), ErrInvalidRecord)

	stats, err := a.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.ExchangeCount, "rejected records must not be stored")
}

// TestArchive_HistoryOrder tests that history comes back oldest first.
func TestArchive_HistoryOrder(t *testing.T) {
	a := newTestArchive(t)

	record(t, a, "chat_1", "t", "first question", "first answer")
	record(t, a, "chat_1", "t", "second question", "second answer")
	record(t, a, "chat_2", "t", "other chat", "other answer")

	exchanges, err := a.History("chat_1")
	require.NoError(t, err)
	require.Len(t, exchanges, 2)
	require.Equal(t, "first question", exchanges[0].UserMessage)
	require.Equal(t, "second question", exchanges[1].UserMessage)
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

// TestArchive_SearchFindsMatches tests basic full-text matching across
// user and assistant content.
func TestArchive_SearchFindsMatches(t *testing.T) {
	a := newTestArchive(t)

	record(t, a, "chat_1", "Recursion", "Explain recursion", "A function calling itself.")
	record(t, a, "chat_2", "Goroutines", "Explain goroutines", "Lightweight threads.")
	record(t, a, "chat_3", "Dinner", "What should I cook tonight?", "Try a stir fry.")

	results, err := a.Search("recursion", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "chat_1", results[0].ChatID)

	// Assistant content is searchable too
	results, err = a.Search("threads", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "chat_2", results[0].ChatID)
}

// TestArchive_SearchPrefixMatch tests that partial leading tokens match.
func TestArchive_SearchPrefixMatch(t *testing.T) {
	a := newTestArchive(t)

	record(t, a, "chat_1", "t", "Explain recursion in programming", "Sure.")

	results, err := a.Search("recur", 0)
	require.NoError(t, err)
	require.Len(t, results, 1, "prefix of a word should match")
}

// TestArchive_SearchMultipleTerms tests that all terms must match.
func TestArchive_SearchMultipleTerms(t *testing.T) {
	a := newTestArchive(t)

	record(t, a, "chat_1", "t", "recursion in python", "Yes.")
	record(t, a, "chat_2", "t", "recursion in go", "Yes.")

	results, err := a.Search("recursion go", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "chat_2", results[0].ChatID)
}

// TestArchive_SearchEmptyTerm tests that a blank query returns nothing
// rather than erroring.
func TestArchive_SearchEmptyTerm(t *testing.T) {
	a := newTestArchive(t)
	record(t, a, "chat_1", "t", "hello", "hi")

	for _, term := range []string{"", "   ", "\t"} {
		results, err := a.Search(term, 0)
		require.NoError(t, err)
		require.Empty(t, results)
	}
}

// TestArchive_SearchNoMatch tests an unmatched query.
func TestArchive_SearchNoMatch(t *testing.T) {
	a := newTestArchive(t)
	record(t, a, "chat_1", "t", "hello", "hi")

	results, err := a.Search("zygomorphic", 0)
	require.NoError(t, err)
	require.Empty(t, results)
}

// TestArchive_SearchHostileInput tests that FTS operator characters in the
// query are treated as literals, not syntax.
func TestArchive_SearchHostileInput(t *testing.T) {
	a := newTestArchive(t)
	record(t, a, "chat_1", "t", "hello", "hi")

	for _, term := range []string{`"unclosed`, `NEAR(`, `a AND`, `col:val`, `-x`, `(((`} {
		_, err := a.Search(term, 0)
		require.NoError(t, err, "query %q should not produce an FTS syntax error", term)
	}
}

// TestArchive_SearchLimit tests the result cap.
func TestArchive_SearchLimit(t *testing.T) {
	a := newTestArchive(t)

	for i := 0; i < 10; i++ {
		record(t, a, fmt.Sprintf("chat_%d", i), "t", "common question", "common answer")
	}

	results, err := a.Search("common", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

// =============================================================================
// STATS TESTS
// =============================================================================

// TestArchive_Stats tests archive statistics.
func TestArchive_Stats(t *testing.T) {
	a := newTestArchive(t)

	stats, err := a.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.ExchangeCount)
	require.Zero(t, stats.ChatCount)
	require.True(t, stats.OldestRecord.IsZero())

	record(t, a, "chat_1", "t", "q1", "a1")
	record(t, a, "chat_1", "t", "q2", "a2")
	record(t, a, "chat_2", "t", "q3", "a3")

	stats, err = a.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.ExchangeCount)
	require.Equal(t, 2, stats.ChatCount)
	require.False(t, stats.OldestRecord.IsZero())
	require.False(t, stats.NewestRecord.Before(stats.OldestRecord))
	require.Greater(t, stats.DatabaseSize, int64(0))
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

// TestArchive_Persistence tests that records survive close and reopen.
func TestArchive_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := Open(path)
	require.NoError(t, err)
	record(t, a, "chat_1", "t", "durable question", "durable answer")
	require.NoError(t, a.Close())

	a, err = Open(path)
	require.NoError(t, err)
	defer a.Close()

	results, err := a.Search("durable", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	stats, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.ExchangeCount)
}

// TestArchive_ConcurrentRecords tests concurrent appends.
// Run with: go test -race -v ./internal/archive/
func TestArchive_ConcurrentRecords(t *testing.T) {
	a := newTestArchive(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				chatID := fmt.Sprintf("chat_%d", g)
				user := model.NewMessage(model.RoleUser, fmt.Sprintf("q %d/%d", g, i))
				assistant := model.NewMessage(model.RoleAssistant, "a")
				if err := a.RecordExchange(chatID, "t", user, assistant); err != nil {
					t.Errorf("RecordExchange failed: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	stats, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, 80, stats.ExchangeCount)
	require.Equal(t, 8, stats.ChatCount)
}

// =============================================================================
// QUERY BUILDER TESTS
// =============================================================================

// TestBuildFTSQuery tests FTS query construction.
func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"single token", "recursion", `"recursion"*`},
		{"two tokens", "go routines", `"go"* "routines"*`},
		{"surrounding space trimmed", "  hello  ", `"hello"*`},
		{"embedded quote doubled", `say "hi"`, `"say"* """hi"""*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildFTSQuery(tt.term); got != tt.want {
				t.Errorf("buildFTSQuery(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}
