// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts backend conversation exports into shareable
// documents.
//
// Two output formats are supported: Markdown (human-readable, with YAML
// frontmatter and per-message sections) and JSON (lossless, mirrors the
// backend payload field names). Each implements the Exporter interface;
// ForFormat picks one by name, and Options carries the output directory,
// the metadata and timestamp toggles, and an optional passphrase:
//
//	exporter, err := export.ForFormat("markdown", opts)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(data, exporter, opts)
//
// When a passphrase is set the written file is sealed with AES-256-GCM,
// carries the "AIDEENC:" prefix and an ".enc" suffix, and can be
// recovered with export.Open and the original passphrase.
package export
