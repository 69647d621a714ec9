// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// COMPOSER TESTS
// =============================================================================

func TestNewInputArea(t *testing.T) {
	theme := styles.NewTheme()
	input := NewInputArea(theme)

	if input.Value() != "" {
		t.Error("new composer should start empty")
	}
	if input.input.CharLimit != composerCharLimit {
		t.Errorf("CharLimit = %d, want %d", input.input.CharLimit, composerCharLimit)
	}
	if !strings.Contains(input.input.Placeholder, "/ for commands") {
		t.Error("placeholder should hint at slash commands")
	}
}

func TestInputAreaFocusBlur(t *testing.T) {
	theme := styles.NewTheme()
	input := NewInputArea(theme)

	if cmd := input.Focus(); cmd == nil {
		t.Error("Focus() should return the cursor blink command")
	}
	if !input.input.Focused() {
		t.Error("Focus() should focus the inner field")
	}

	input.Blur()
	if input.input.Focused() {
		t.Error("Blur() should unfocus the inner field")
	}
}

func TestInputAreaValueRoundTrip(t *testing.T) {
	theme := styles.NewTheme()
	input := NewInputArea(theme)

	input.SetValue("hello backend")
	if got := input.Value(); got != "hello backend" {
		t.Errorf("Value() = %q, want %q", got, "hello backend")
	}

	input.Reset()
	if input.Value() != "" {
		t.Error("Reset() should clear the composer")
	}
}

func TestInputAreaSetWidth(t *testing.T) {
	theme := styles.NewTheme()
	input := NewInputArea(theme)

	input.SetWidth(100)
	if input.input.Width != 90 {
		t.Errorf("inner width = %d, want 90", input.input.Width)
	}

	// Narrow terminals keep a usable minimum.
	input.SetWidth(12)
	if input.input.Width != 20 {
		t.Errorf("narrow inner width = %d, want floor of 20", input.input.Width)
	}
}

func TestInputAreaView(t *testing.T) {
	theme := styles.NewTheme()
	input := NewInputArea(theme)
	input.SetWidth(80)

	got := input.View()
	if got == "" {
		t.Fatal("View() should not be empty")
	}
	if !strings.Contains(got, "chars") {
		t.Error("View() should include the character counter")
	}
	if !strings.Contains(got, "0 / 4,096") {
		t.Error("counter should show zero usage for an empty composer")
	}
}

func TestInputAreaCounterEscalation(t *testing.T) {
	theme := styles.NewTheme()

	tests := []struct {
		name   string
		fill   int
		marker string
	}{
		{"plain below warning", 100, ""},
		{"warning at three quarters", 3100, "[~]"},
		{"danger near the limit", 3700, "[!]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewInputArea(theme)
			input.SetValue(strings.Repeat("a", tt.fill))

			counter := input.renderCharCounter()
			if tt.marker == "" {
				if strings.Contains(counter, "[~]") || strings.Contains(counter, "[!]") {
					t.Errorf("counter = %q, want no escalation marker", counter)
				}
				return
			}
			if !strings.Contains(counter, tt.marker) {
				t.Errorf("counter = %q, want it to contain %q", counter, tt.marker)
			}
		})
	}
}

func TestUsageAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		count int
		limit int
		pct   int
		want  bool
	}{
		{"zero usage", 0, 100, 75, false},
		{"just below threshold", 74, 100, 75, false},
		{"exactly at threshold", 75, 100, 75, true},
		{"above threshold", 95, 100, 90, true},
		{"zero limit never triggers", 50, 0, 75, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usageAtLeast(tt.count, tt.limit, tt.pct); got != tt.want {
				t.Errorf("usageAtLeast(%d, %d, %d) = %v, want %v",
					tt.count, tt.limit, tt.pct, got, tt.want)
			}
		})
	}
}
