// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatSummary is one entry of the conversation listing, already validated
// and with timestamps parsed.
type ChatSummary struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastMessage string
}

// HistoryMessage is one validated entry of a conversation's history.
type HistoryMessage struct {
	Role      model.Role
	Content   string
	Timestamp time.Time
}

// Stats summarizes backend usage counters.
type Stats struct {
	TotalChats    int          `json:"total_chats"`
	TotalMessages int          `json:"total_messages"`
	MemoryItems   int          `json:"user_memory_items"`
	Memory        model.Memory `json:"user_memory"`
}

// ExportData is the backend's export payload for a single conversation.
type ExportData struct {
	ChatID     string
	Title      string
	CreatedAt  time.Time
	Messages   []HistoryMessage
	ExportedAt time.Time
}

// =============================================================================
// RAW DECODE SHAPES
// =============================================================================

// The backend's field types are loose: timestamps arrive as RFC 3339
// strings, SQLite "YYYY-MM-DD HH:MM:SS" strings, or unix numbers, and some
// fields may be absent entirely. Raw shapes capture them as RawMessage and
// validation converts them exactly once, at this boundary.

type rawChatList struct {
	Chats json.RawMessage `json:"chats"`
}

type rawChatEntry struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	CreatedAt   json.RawMessage `json:"created_at"`
	UpdatedAt   json.RawMessage `json:"updated_at"`
	LastMessage string          `json:"last_message"`
}

type rawHistory struct {
	History json.RawMessage `json:"history"`
}

type rawHistoryEntry struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp json.RawMessage `json:"timestamp"`
	CreatedAt json.RawMessage `json:"created_at"`
}

type rawSuccess struct {
	Success bool `json:"success"`
}

type rawAskResponse struct {
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

type rawMemory struct {
	Memory map[string]json.RawMessage `json:"memory"`
}

type rawExport struct {
	ExportData *rawExportData `json:"export_data"`
}

type rawExportData struct {
	ChatID     string            `json:"chat_id"`
	Title      string            `json:"title"`
	CreatedAt  json.RawMessage   `json:"created_at"`
	Messages   []rawHistoryEntry `json:"messages"`
	ExportedAt json.RawMessage   `json:"exported_at"`
}

// detailBody is FastAPI's standard error shape for non-2xx responses.
type detailBody struct {
	Detail string `json:"detail"`
}

// =============================================================================
// TIMESTAMP PARSING
// =============================================================================

// timestampLayouts are tried in order against string timestamps. The
// backend's SQLite layer emits "2006-01-02 15:04:05"; newer rows carry
// RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp converts a raw JSON timestamp into a time. Absent, null,
// or unparseable values default to now - never to the zero time, which
// would render as a decades-old date.
func parseTimestamp(raw json.RawMessage, now time.Time) time.Time {
	if len(raw) == 0 {
		return now
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return now
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return now
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		// Heuristic: values past the year 33658 in seconds are milliseconds.
		if n > 1e12 {
			return time.UnixMilli(int64(n))
		}
		return time.Unix(int64(n), 0)
	}

	return now
}

// stringifyValue renders a raw JSON scalar as display text. Memory values
// are documented as strings but the backend has stored numbers too.
func stringifyValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return strings.TrimSpace(string(raw))
}
