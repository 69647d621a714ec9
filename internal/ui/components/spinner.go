// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// PENDING-STATE SPINNERS
// =============================================================================

// The client has exactly two waiting affordances: the thinking indicator
// while an exchange is in flight, and the boxed loader while a
// conversation's history is fetched for the first time. Both build on the
// Spinner base below. Frame sets and timing live in styles.SpinnerConfig.

// Spinner animates a frame set next to a short status message.
type Spinner struct {
	frames    spinner.Model
	label     string
	timed     bool
	startedAt time.Time
	active    bool
}

var (
	spinnerAccent = lipgloss.NewStyle().Foreground(styles.Purple)
	spinnerLabel  = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	spinnerTimer  = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// NewSpinner returns an inactive spinner with the default line frames.
func NewSpinner() Spinner { return newSpinner(styles.LineSpinner, "Loading") }

func newSpinner(cfg styles.SpinnerConfig, label string) Spinner {
	m := spinner.New()
	m.Spinner = spinner.Spinner{Frames: cfg.Frames, FPS: cfg.Duration()}
	return Spinner{frames: m, label: label}
}

// SetMessage replaces the status text next to the frames.
func (sp *Spinner) SetMessage(msg string) { sp.label = msg }

// SetShowTimer toggles the elapsed counter. The exchange call has no
// client-side deadline, so the counter is the only hint of a slow backend.
func (sp *Spinner) SetShowTimer(show bool) { sp.timed = show }

// Start activates the animation and records the start time.
func (sp *Spinner) Start() tea.Cmd {
	sp.active = true
	sp.startedAt = time.Now()
	return sp.frames.Tick
}

// Stop halts the animation.
func (sp *Spinner) Stop() { sp.active = false }

// IsActive reports whether the spinner is running.
func (sp Spinner) IsActive() bool { return sp.active }

// Elapsed returns how long the spinner has been running.
func (sp Spinner) Elapsed() time.Duration {
	if !sp.startedAt.IsZero() {
		return time.Since(sp.startedAt)
	}
	return 0
}

// Update advances the frame animation while active.
func (sp Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !sp.active {
		return sp, nil
	}
	var cmd tea.Cmd
	sp.frames, cmd = sp.frames.Update(msg)
	return sp, cmd
}

// View renders frames, label, and the optional elapsed counter.
func (sp Spinner) View() string {
	if !sp.active {
		return ""
	}

	out := spinnerAccent.Render(sp.frames.View()) + " " + spinnerLabel.Render(sp.label) + spinnerAccent.Render("...")
	if sp.timed && !sp.startedAt.IsZero() {
		out += spinnerTimer.Render(" (" + elapsedText(sp.Elapsed()) + ")")
	}
	return out
}

// =============================================================================
// THINKING INDICATOR - In-flight exchange feedback
// =============================================================================

// ThinkingIndicator runs from the moment a message is sent until the reply
// (or the synthetic error turn) lands.
type ThinkingIndicator struct {
	Spinner
}

// NewThinkingIndicator returns an indicator in the stopped state.
func NewThinkingIndicator() ThinkingIndicator {
	base := newSpinner(styles.DotsSpinner, "Thinking")
	base.timed = true
	return ThinkingIndicator{Spinner: base}
}

// Update advances the animation.
func (i ThinkingIndicator) Update(msg tea.Msg) (ThinkingIndicator, tea.Cmd) {
	var cmd tea.Cmd
	i.Spinner, cmd = i.Spinner.Update(msg)
	return i, cmd
}

// =============================================================================
// HISTORY LOADER
// =============================================================================

// HistoryLoadingSpinner is the boxed loader shown while a conversation's
// transcript is fetched for the first time.
type HistoryLoadingSpinner struct {
	Spinner
}

// NewHistoryLoadingSpinner returns a loader labeled with the conversation
// title when one is known.
func NewHistoryLoadingSpinner(title string) HistoryLoadingSpinner {
	label := "Loading conversation"
	if title != "" {
		label = "Loading " + title
	}
	return HistoryLoadingSpinner{Spinner: newSpinner(styles.LineSpinner, label)}
}

var loaderBox = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(styles.Purple).Padding(1, 2)

// Update advances the animation.
func (h HistoryLoadingSpinner) Update(msg tea.Msg) (HistoryLoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	h.Spinner, cmd = h.Spinner.Update(msg)
	return h, cmd
}

// View wraps the base spinner in a rounded box.
func (h HistoryLoadingSpinner) View() string {
	if !h.IsActive() {
		return ""
	}
	return loaderBox.Render(h.Spinner.View())
}

// elapsedText renders a duration as "42s" or "3m 7s" text.
func elapsedText(d time.Duration) string {
	secs := int(d.Seconds())
	if secs >= 60 {
		return itoa(secs/60) + "m " + itoa(secs%60) + "s"
	}
	return itoa(secs) + "s"
}
