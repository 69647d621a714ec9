// json_output.go - JSON output support for scripting integration.
//
// Provides a standardized JSON output format for all CLI commands so
// output can be piped to jq, log aggregation, or other tooling.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"os"
	"time"
)

// JSONResponse is the envelope wrapped around every --json command.
// Each invocation emits exactly one envelope on stdout; any
// human-readable progress goes to stderr.
type JSONResponse struct {
	Success   bool    `json:"success"`
	Data      any     `json:"data"`
	Error     *string `json:"error"`     // null unless Success is false
	Timestamp string  `json:"timestamp"` // RFC3339, UTC
	Command   string  `json:"command,omitempty"`
}

func newEnvelope(cmd string) *JSONResponse {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return &JSONResponse{Command: cmd, Timestamp: stamp}
}

// NewJSONResponse creates a successful JSON response carrying data.
func NewJSONResponse(cmd string, data any) *JSONResponse {
	r := newEnvelope(cmd)
	r.Success = true
	r.Data = data
	return r
}

// NewJSONErrorResponse creates a failed JSON response carrying the error.
func NewJSONErrorResponse(cmd string, err error) *JSONResponse {
	r := newEnvelope(cmd)
	msg := err.Error()
	r.Error = &msg
	return r
}

// Print writes the indented envelope to stdout.
func (r *JSONResponse) Print() error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// =============================================================================
// PER-COMMAND PAYLOADS
// =============================================================================

// VersionData is the version command's payload.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AskData is the ask command's payload.
type AskData struct {
	Response   string `json:"response"`
	ChatID     string `json:"chat_id"`
	Query      string `json:"query"`
	NewChat    bool   `json:"new_chat"`
	DurationMs int64  `json:"duration_ms"`
}

// ChatEntryData is one conversation in the chats listing.
type ChatEntryData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Preview   string `json:"preview,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ChatListData is the chats command's payload.
type ChatListData struct {
	Chats []ChatEntryData `json:"chats"`
	Count int             `json:"count"`
}

// StatsData is the stats command's payload. Either side may be absent
// when its source was unreachable or skipped.
type StatsData struct {
	Backend *BackendStatsData `json:"backend,omitempty"`
	Archive *ArchiveStatsData `json:"archive,omitempty"`
}

// BackendStatsData carries the usage totals reported by the backend.
type BackendStatsData struct {
	TotalChats    int `json:"total_chats"`
	TotalMessages int `json:"total_messages"`
	MemoryItems   int `json:"memory_items"`
}

// ArchiveStatsData carries statistics for the local archive database.
type ArchiveStatsData struct {
	Exchanges    int64  `json:"exchanges"`
	Chats        int64  `json:"chats"`
	OldestRecord string `json:"oldest_record,omitempty"`
	NewestRecord string `json:"newest_record,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	Path         string `json:"path"`
}

// MemoryData is the memory command's payload.
type MemoryData struct {
	Items map[string]string `json:"items"`
	Count int               `json:"count"`
}

// ExportResultData is the export command's payload.
type ExportResultData struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	ChatID    string `json:"chat_id"`
	Messages  int    `json:"messages"`
	Encrypted bool   `json:"encrypted"`
}

// SearchHitData is one archive search result.
type SearchHitData struct {
	ChatID   string  `json:"chat_id"`
	Title    string  `json:"title,omitempty"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	AskedAt  string  `json:"asked_at"`
	Rank     float64 `json:"rank"`
}

// SearchData is the search command's payload.
type SearchData struct {
	Term    string          `json:"term"`
	Results []SearchHitData `json:"results"`
	Count   int             `json:"count"`
}
