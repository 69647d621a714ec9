// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive provides a local append-only mirror of completed exchanges.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("archive closed")
	ErrDatabaseError = errors.New("archive database error")
	ErrInvalidRecord = errors.New("invalid exchange record")
)

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is a local SQLite mirror of completed exchanges. The session
// manager appends to it after each successful send; it is never consulted
// when rendering conversations, so the backend stays the source of truth.
type Archive struct {
	db   *sql.DB
	path string

	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if necessary) the archive database at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, errors.New("archive path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	a := &Archive{
		db:   db,
		path: path,
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return a, nil
}

// initSchema creates the database schema.
func (a *Archive) initSchema() error {
	if _, err := a.db.Exec(Schema); err != nil {
		return err
	}
	if _, err := a.db.Exec(InitMetadata); err != nil {
		return err
	}
	return nil
}

// Path returns the archive database file path.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the archive and releases resources.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// =============================================================================
// RECORDING
// =============================================================================

// RecordExchange appends a completed exchange to the archive. It satisfies
// the session manager's recorder contract and is only called after the
// backend has confirmed the exchange.
func (a *Archive) RecordExchange(chatID, title string, user, assistant *model.Message) error {
	if chatID == "" {
		return fmt.Errorf("%w: empty chat id", ErrInvalidRecord)
	}
	if user == nil || assistant == nil {
		return fmt.Errorf("%w: missing message", ErrInvalidRecord)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	_, err := a.db.Exec(`
		INSERT INTO exchanges (chat_id, title, user_message, assistant_message, asked_at, answered_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, chatID, title, user.Content, assistant.Content,
		user.Timestamp.Unix(), assistant.Timestamp.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Exchange is one archived user/assistant exchange.
type Exchange struct {
	ID               int64
	ChatID           string
	Title            string
	UserMessage      string
	AssistantMessage string
	AskedAt          time.Time
	AnsweredAt       time.Time
	RecordedAt       time.Time
}

// SearchResult is an archived exchange matched by a search query.
type SearchResult struct {
	Exchange
	Rank float64 // FTS relevance rank; lower sorts better
}

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 50

// Search finds archived exchanges matching the term using full-text search
// with per-token prefix matching. An empty term yields no results.
func (a *Archive) Search(term string, limit int) ([]SearchResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}

	ftsQuery := buildFTSQuery(term)
	if ftsQuery == "" {
		return []SearchResult{}, nil
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := a.db.Query(`
		SELECT
			e.id, e.chat_id, e.title, e.user_message, e.assistant_message,
			e.asked_at, e.answered_at, e.recorded_at,
			fts.rank
		FROM exchanges_fts fts
		JOIN exchanges e ON e.id = fts.rowid
		WHERE exchanges_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title sql.NullString
		var askedAt, answeredAt, recordedAt int64

		err := rows.Scan(
			&r.ID,
			&r.ChatID,
			&title,
			&r.UserMessage,
			&r.AssistantMessage,
			&askedAt,
			&answeredAt,
			&recordedAt,
			&r.Rank,
		)
		if err != nil {
			continue
		}

		if title.Valid {
			r.Title = title.String
		}
		r.AskedAt = time.Unix(askedAt, 0)
		r.AnsweredAt = time.Unix(answeredAt, 0)
		r.RecordedAt = time.Unix(recordedAt, 0)

		results = append(results, r)
	}

	return results, rows.Err()
}

// History returns the archived exchanges for one conversation, oldest first.
func (a *Archive) History(chatID string) ([]Exchange, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}

	rows, err := a.db.Query(`
		SELECT id, chat_id, title, user_message, assistant_message, asked_at, answered_at, recorded_at
		FROM exchanges
		WHERE chat_id = ?
		ORDER BY id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		var title sql.NullString
		var askedAt, answeredAt, recordedAt int64

		err := rows.Scan(&e.ID, &e.ChatID, &title, &e.UserMessage, &e.AssistantMessage, &askedAt, &answeredAt, &recordedAt)
		if err != nil {
			continue
		}

		if title.Valid {
			e.Title = title.String
		}
		e.AskedAt = time.Unix(askedAt, 0)
		e.AnsweredAt = time.Unix(answeredAt, 0)
		e.RecordedAt = time.Unix(recordedAt, 0)

		exchanges = append(exchanges, e)
	}

	return exchanges, rows.Err()
}

// buildFTSQuery builds an FTS5 query from user input: each whitespace-
// separated token becomes a quoted prefix term, implicitly AND-ed. Quoting
// neutralizes FTS5 operator characters in the input.
func buildFTSQuery(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}

	fields := strings.Fields(term)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"*`
	}
	return strings.Join(fields, " ")
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats summarizes archive contents.
type Stats struct {
	ExchangeCount int
	ChatCount     int
	OldestRecord  time.Time
	NewestRecord  time.Time
	DatabaseSize  int64
}

// Stats returns current archive statistics.
func (a *Archive) Stats() (Stats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return Stats{}, ErrClosed
	}

	var stats Stats
	var oldest, newest sql.NullInt64

	err := a.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT chat_id), MIN(recorded_at), MAX(recorded_at)
		FROM exchanges
	`).Scan(&stats.ExchangeCount, &stats.ChatCount, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if oldest.Valid {
		stats.OldestRecord = time.Unix(oldest.Int64, 0)
	}
	if newest.Valid {
		stats.NewestRecord = time.Unix(newest.Int64, 0)
	}

	if info, err := os.Stat(a.path); err == nil {
		stats.DatabaseSize = info.Size()
	}

	return stats, nil
}
