// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive provides a local append-only mirror of completed exchanges.
package archive

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the exchange archive with FTS (Full Text Search)
const Schema = `
-- Metadata table for schema version and archive state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Exchanges table: one row per completed user/assistant exchange.
-- The archive is append-only; rows are never updated.
CREATE TABLE IF NOT EXISTS exchanges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id TEXT NOT NULL,
    title TEXT,
    user_message TEXT NOT NULL,
    assistant_message TEXT NOT NULL,
    asked_at INTEGER NOT NULL,     -- Unix timestamp of the user turn
    answered_at INTEGER NOT NULL,  -- Unix timestamp of the assistant turn
    recorded_at INTEGER NOT NULL   -- Unix timestamp of archival
);

CREATE INDEX IF NOT EXISTS idx_exchanges_chat_id ON exchanges(chat_id);
CREATE INDEX IF NOT EXISTS idx_exchanges_recorded_at ON exchanges(recorded_at);

-- Full-text search virtual table over exchange content
CREATE VIRTUAL TABLE IF NOT EXISTS exchanges_fts USING fts5(
    title,
    user_message,
    assistant_message,
    content='exchanges',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- Triggers to keep the FTS table in sync. The store is append-only so the
-- insert trigger carries the load; the delete trigger keeps FTS coherent
-- if rows are ever pruned by hand.
CREATE TRIGGER IF NOT EXISTS exchanges_ai AFTER INSERT ON exchanges BEGIN
    INSERT INTO exchanges_fts(rowid, title, user_message, assistant_message)
    VALUES (new.id, new.title, new.user_message, new.assistant_message);
END;

CREATE TRIGGER IF NOT EXISTS exchanges_ad AFTER DELETE ON exchanges BEGIN
    DELETE FROM exchanges_fts WHERE rowid = old.id;
END;
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
