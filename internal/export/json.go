// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/cmp"
)

// =============================================================================
// JSON DOCUMENT RENDERING
// =============================================================================

// JSONExporter renders a conversation as an indented JSON document.
type JSONExporter struct {
	opts *Options
}

// NewJSONExporter wires options in, substituting defaults for nil.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{opts: cmp.Or(opts, DefaultOptions())}
}

// jsonExport is the serialized document shape. Field names match the
// backend's export payload so round-tripping stays lossless.
type jsonExport struct {
	ChatID     string        `json:"chat_id"`
	Title      string        `json:"title"`
	CreatedAt  string        `json:"created_at,omitempty"`
	Messages   []jsonMessage `json:"messages"`
	ExportedAt string        `json:"exported_at"`
	Generator  string        `json:"generator,omitempty"`
}

type jsonMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Export converts an export payload to indented JSON.
func (e *JSONExporter) Export(data *api.ExportData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("export data is nil")
	}

	doc := jsonExport{
		ChatID:     data.ChatID,
		Title:      data.Title,
		Messages:   make([]jsonMessage, 0, len(data.Messages)),
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
	}
	if !data.CreatedAt.IsZero() {
		doc.CreatedAt = data.CreatedAt.Format(time.RFC3339)
	}
	if e.opts.IncludeMetadata {
		doc.Generator = "aide"
	}

	for _, msg := range data.Messages {
		jm := jsonMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if e.opts.IncludeTimestamps && !msg.Timestamp.IsZero() {
			jm.Timestamp = msg.Timestamp.Format(time.RFC3339)
		}
		doc.Messages = append(doc.Messages, jm)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

func (e *JSONExporter) FileExtension() string { return ".json" }

func (e *JSONExporter) MimeType() string { return "application/json" }
