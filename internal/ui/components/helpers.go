// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for aide TUI.
package components

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// =============================================================================
// RENDER-PATH HELPERS
// =============================================================================

// itoa is strconv.Itoa under a name short enough for render paths.
func itoa(n int) string { return strconv.Itoa(n) }

// commas groups digits with thousand separators: 1234567 -> "1,234,567".
func commas(n int) string { return humanize.Comma(int64(n)) }
