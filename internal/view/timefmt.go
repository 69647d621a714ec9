// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"time"

	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// RELATIVE TIME FORMATTING
// =============================================================================

// Millisecond spans for the relative-time buckets.
const (
	minuteMs = 60_000
	hourMs   = 3_600_000
	dayMs    = 86_400_000
	weekMs   = 7 * dayMs
)

// absoluteDateLayout renders timestamps older than a week.
const absoluteDateLayout = "Jan 2, 2006"

// RelativeTime formats a timestamp relative to now for list and transcript
// display:
//   - Under a minute: "Now"
//   - Under an hour: "{m}m ago"
//   - Under a day: "{h}h ago"
//   - Under a week: "{d}d ago"
//   - Older: absolute date (e.g., "Jan 2, 2006")
//
// Buckets are floor divisions of elapsed milliseconds, and a boundary value
// belongs to the coarser bucket: exactly sixty minutes reads "1h ago", not
// "60m ago". Timestamps in the future read "Now".
func RelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case elapsed < minuteMs:
		return "Now"
	case elapsed < hourMs:
		return util.Int64ToString(elapsed/minuteMs) + "m ago"
	case elapsed < dayMs:
		return util.Int64ToString(elapsed/hourMs) + "h ago"
	case elapsed < weekMs:
		return util.Int64ToString(elapsed/dayMs) + "d ago"
	default:
		return t.Format(absoluteDateLayout)
	}
}
