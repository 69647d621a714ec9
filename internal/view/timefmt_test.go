// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"testing"
	"time"
)

// =============================================================================
// RELATIVE TIME TESTS
// =============================================================================

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		elapsedMs int64
		want      string
	}{
		{"zero elapsed", 0, "Now"},
		{"just under a minute", 59_000, "Now"},
		{"exactly one minute", 60_000, "1m ago"},
		{"a few minutes", 150_000, "2m ago"},
		{"just under an hour", 3_599_999, "59m ago"},
		{"exactly one hour", 3_600_000, "1h ago"},
		{"a few hours", 7_200_000, "2h ago"},
		{"just under a day", 86_399_999, "23h ago"},
		{"exactly one day", 86_400_000, "1d ago"},
		{"a few days", 259_200_000, "3d ago"},
		{"just under a week", 604_799_999, "6d ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			at := now.Add(-time.Duration(tc.elapsedMs) * time.Millisecond)
			if got := RelativeTime(at, now); got != tc.want {
				t.Errorf("RelativeTime(-%dms) = %q, want %q", tc.elapsedMs, got, tc.want)
			}
		})
	}
}

func TestRelativeTime_WeekOldUsesAbsoluteDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Exactly seven days belongs to the absolute-date bucket.
	at := now.Add(-7 * 24 * time.Hour)
	if got := RelativeTime(at, now); got != "Jun 8, 2025" {
		t.Errorf("RelativeTime(exactly 7d) = %q, want %q", got, "Jun 8, 2025")
	}

	// Much older dates keep the same layout.
	old := time.Date(2024, 12, 3, 9, 30, 0, 0, time.UTC)
	if got := RelativeTime(old, now); got != "Dec 3, 2024" {
		t.Errorf("RelativeTime(old) = %q, want %q", got, "Dec 3, 2024")
	}
}

func TestRelativeTime_FutureReadsNow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if got := RelativeTime(now.Add(5*time.Minute), now); got != "Now" {
		t.Errorf("RelativeTime(future) = %q, want %q", got, "Now")
	}
}
