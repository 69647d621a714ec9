// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared string, conversion, and file helpers for aide.
//
// This package contains the small, dependency-light helpers used throughout
// the client: rune- and width-aware truncation for previews and titles
// (TruncateRunes, TrailingRunes, and the go-runewidth backed TruncateWidth
// for terminal columns), numeric formatting for status output (IntToString,
// Int64ToString), and crash-safe writes for exports and saved configuration
// (AtomicWriteFile, which syncs before renaming into place).
//
// For example, the sidebar shows the tail of the latest message:
//
//	preview := util.TrailingRunes(lastMessage, 60)
package util
