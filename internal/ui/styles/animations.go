// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for aide TUI.
package styles

import "time"

// =============================================================================
// SPINNER FRAME SETS
// =============================================================================

// SpinnerConfig describes an animation frame set and its playback rate.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration converts FPS to the per-frame interval, defaulting to 100ms
// when the rate is unset.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Second / time.Duration(s.FPS)
}

// Spinner frame sets. Line is the generic loading animation; Dots drives
// the thinking indicator while a reply is pending. ASCII-only so they
// render on any terminal.
var (
	LineSpinner = SpinnerConfig{Frames: []string{"|", "/", "-", "\\"}, FPS: 10}
	DotsSpinner = SpinnerConfig{Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "}, FPS: 6}
)

// =============================================================================
// CONNECTION MARKERS
// =============================================================================

// Connection markers shown in the status bar, paired with the ConnOnline
// and ConnOffline styles.
const (
	MarkerOnline  = "(+)"
	MarkerOffline = "(-)"
)
