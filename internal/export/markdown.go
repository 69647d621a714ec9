// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// MARKDOWN DOCUMENT RENDERING
// =============================================================================

// MarkdownExporter renders a conversation as a Markdown document.
type MarkdownExporter struct {
	opts *Options
}

// NewMarkdownExporter wires options in, substituting defaults for nil.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	return &MarkdownExporter{opts: cmp.Or(opts, DefaultOptions())}
}

// Export converts an export payload to Markdown: optional YAML frontmatter,
// a metadata section, then one heading per conversation turn.
func (e *MarkdownExporter) Export(data *api.ExportData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("export data is nil")
	}

	title := data.Title
	if title == "" {
		title = "Untitled Chat"
	}

	var b strings.Builder
	if e.opts.IncludeMetadata {
		e.writeFrontmatter(&b, data, title)
	}

	b.WriteString("# " + escapeMarkdown(title) + "\n\n")
	if e.opts.IncludeMetadata {
		b.WriteString("## Session Information\n\n")
		fmt.Fprintf(&b, "- **Created**: %s\n", formatTimestamp(data.CreatedAt))
		fmt.Fprintf(&b, "- **Messages**: %d\n\n---\n\n", len(data.Messages))
	}

	b.WriteString("## Conversation\n\n")
	for i, msg := range data.Messages {
		e.writeMessage(&b, msg)
		if i < len(data.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&b, "\n---\n\n*Exported from aide on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM"))

	return []byte(b.String()), nil
}

// writeFrontmatter emits the YAML metadata block. Tools that index notes
// (static site generators, Obsidian) read these keys.
func (e *MarkdownExporter) writeFrontmatter(b *strings.Builder, data *api.ExportData, title string) {
	b.WriteString("---\n")
	fmt.Fprintf(b, "title: %s\n", escapeYAML(title))
	fmt.Fprintf(b, "chat_id: %s\n", data.ChatID)
	fmt.Fprintf(b, "date: %s\n", data.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(b, "messages: %d\n", len(data.Messages))
	fmt.Fprintf(b, "exported: %s\n", data.ExportedAt.Format(time.RFC3339))
	b.WriteString("generator: aide\n---\n\n")
}

// writeMessage emits one conversation turn: a role heading, optionally
// tagged with the message time, followed by the content.
func (e *MarkdownExporter) writeMessage(b *strings.Builder, msg api.HistoryMessage) {
	heading := e.formatRoleLabel(msg.Role)
	if e.opts.IncludeTimestamps {
		heading += " <sub>" + formatShortTimestamp(msg.Timestamp) + "</sub>"
	}
	fmt.Fprintf(b, "### %s\n\n", heading)

	// Assistant content is already markdown; pass it through untouched.
	b.WriteString(strings.TrimSpace(msg.Content))
	b.WriteString("\n\n")
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }

func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// roleHeadings are the bracketed labels matching the TUI transcript.
var roleHeadings = map[model.Role]string{
	model.RoleUser:      "[User]",
	model.RoleAssistant: "[Assistant]",
}

// formatRoleLabel returns the heading label for a message role; roles
// outside the map are shown capitalized as-is.
func (e *MarkdownExporter) formatRoleLabel(role model.Role) string {
	if heading, ok := roleHeadings[role]; ok {
		return heading
	}
	runes := []rune(string(role))
	if len(runes) == 0 {
		return "Unknown"
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// =============================================================================
// ESCAPING AND TIMESTAMPS
// =============================================================================

// Long and short timestamp forms, for the metadata section and the
// per-message markers respectively.
func formatTimestamp(t time.Time) string      { return t.Format("2006-01-02 15:04:05") }
func formatShortTimestamp(t time.Time) string { return t.Format("15:04:05") }

// markdownEscaper neutralizes the characters that would change heading
// structure when a title is interpolated into markdown.
var markdownEscaper = strings.NewReplacer(
	"#", "\\#",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// yamlQuoteEscaper handles the characters that must be escaped inside a
// double-quoted YAML scalar.
var yamlQuoteEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\r", "\\r",
)

// escapeYAML returns s as a safe YAML scalar: plain when it contains no
// syntax characters, double-quoted with escapes otherwise.
func escapeYAML(s string) string {
	if !strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") &&
		!strings.HasPrefix(s, " ") && !strings.HasSuffix(s, " ") {
		return s
	}
	return "\"" + yamlQuoteEscaper.Replace(s) + "\""
}
