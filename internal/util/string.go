// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared string, conversion, and file helpers for aide.
package util

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// These helpers count runes or display columns, never bytes, so UTF-8
// content from the assistant is never split mid-character.

// TruncateRunes truncates a string to at most n runes. When the string
// is cut, "..." is appended and the result still fits within n.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 3 {
		return string(rs[:n])
	}
	return string(rs[:n-3]) + "..."
}

// TrailingRunes returns the last n runes of a string. Used for
// conversation previews, which show the tail of the latest message.
func TrailingRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[len(rs)-n:])
}

// CollapseSpace replaces runs of whitespace (including newlines) with a
// single space and trims the ends. Previews and titles are single-line.
func CollapseSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// TruncateWidth truncates a string to at most w terminal columns,
// accounting for double-width CJK characters. When the string is cut,
// "..." is appended within the column budget.
func TruncateWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	if w <= 3 {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.Truncate(s, w, "...")
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int { return runewidth.StringWidth(s) }

// PadRight pads a string with spaces to the given display width.
// Strings already at or beyond the width are returned unchanged.
func PadRight(s string, width int) string { return runewidth.FillRight(s, width) }

// RuneLen returns the number of runes in a string. Safer than len()
// for UTF-8 strings when counting characters.
func RuneLen(s string) int { return len([]rune(s)) }

// Base-10 formatting wrappers. IDs are built from timestamps
// ("msg_" + nanos) and the sidebar prints minute/hour/day counts;
// both are hot render paths that want plain digits, not a format verb.

// IntToString formats an int in base 10.
func IntToString(i int) string { return strconv.Itoa(i) }

// Int64ToString formats an int64 in base 10.
func Int64ToString(i int64) string { return strconv.FormatInt(i, 10) }
