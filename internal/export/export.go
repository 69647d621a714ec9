// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes backend conversation exports to local files.
// Supports Markdown and JSON formats with optional passphrase encryption.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// FORMAT INTERFACE
// =============================================================================

// Exporter turns an export payload into one output format.
type Exporter interface {
	// Export renders the payload as the format's bytes.
	Export(data *api.ExportData) ([]byte, error)

	// FileExtension is the extension written for the format, e.g. ".md".
	FileExtension() string

	// MimeType identifies the format for anything serving the file.
	MimeType() string
}

// ForFormat returns the exporter for a config format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch format {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options adjusts what an export contains and where it lands.
type Options struct {
	OutputDir string // empty means the current directory

	// IncludeMetadata adds a header with timestamps and counts;
	// IncludeTimestamps adds a time line to every message.
	IncludeMetadata   bool
	IncludeTimestamps bool

	// Passphrase, when non-empty, encrypts the output file with a key
	// derived from it. The file gets an additional .enc extension.
	Passphrase string
}

// DefaultOptions writes to the current directory with everything included.
func DefaultOptions() *Options {
	return &Options{OutputDir: ".", IncludeMetadata: true, IncludeTimestamps: true}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders data with exporter and writes it under opts.OutputDir.
// The filename carries the conversation title plus a timestamp, so repeated
// exports of the same conversation never clobber each other. Returns the
// path written.
func ExportToFile(data *api.ExportData, exporter Exporter, opts *Options) (string, error) {
	opts = cmp.Or(opts, DefaultOptions())

	content, err := exporter.Export(data)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}

	ext := exporter.FileExtension()
	if opts.Passphrase != "" {
		if content, err = Seal(opts.Passphrase, content); err != nil {
			return "", fmt.Errorf("encrypt export: %w", err)
		}
		ext += ".enc"
	}

	dir := cmp.Or(opts.OutputDir, ".")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	// RELIABILITY: atomic write so a crash never leaves a half-written export.
	path := filepath.Join(dir, exportFilename(data.Title, ext))
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// exportFilename builds "chat_<title>_<stamp><ext>" with the title reduced
// to filesystem-safe runes.
func exportFilename(title, ext string) string {
	stamp := time.Now().Format("20060102_150405")
	return "chat_" + sanitizeTitle(title) + "_" + stamp + ext
}

// sanitizeTitle reduces a conversation title to a filename-safe stem.
// Whitespace becomes '_'; path separators, shell-hostile punctuation, and
// control characters become '-'. The stem is capped at 50 runes so long
// titles never push the full name past filesystem limits.
func sanitizeTitle(s string) string {
	const maxStem = 50
	if runes := []rune(s); len(runes) > maxStem {
		s = string(runes[:maxStem])
	}

	out := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			return '-'
		}
		return r
	}, s)

	if out == "" {
		return "chat"
	}
	return out
}
