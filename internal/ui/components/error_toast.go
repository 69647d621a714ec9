// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
//
// This file implements the auto-dismissing toast stack. Write failures
// (delete, rename, clear-all) surface here without blocking the composer:
// toasts pile up in the bottom-right corner and expire on their own, so a
// flaky backend never traps the user behind a modal.
package components

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// TOAST KINDS
// =============================================================================

// ToastKind selects the accent color, icon, and lifetime of a toast.
type ToastKind int

const (
	ToastKindStatus  ToastKind = iota // zero value: neutral notice
	ToastKindError                    // failed write, lingers longest
	ToastKindWarning                  // degraded but working
	ToastKindSuccess                  // completed action
)

// toastLook bundles everything presentation decides per kind.
type toastLook struct {
	color    lipgloss.AdaptiveColor
	icon     string
	lifetime time.Duration
}

var toastLooks = map[ToastKind]toastLook{
	ToastKindStatus:  {styles.Cyan, styles.StatusIndicators.Info, 4 * time.Second},
	ToastKindError:   {styles.Rose, styles.StatusIndicators.Error, 8 * time.Second},
	ToastKindWarning: {styles.Amber, styles.StatusIndicators.Warning, 6 * time.Second},
	ToastKindSuccess: {styles.Emerald, styles.StatusIndicators.Success, 4 * time.Second},
}

// look returns the presentation row for k; unknown kinds read as status.
func (k ToastKind) look() toastLook {
	if l, ok := toastLooks[k]; ok {
		return l
	}
	return toastLooks[ToastKindStatus]
}

// dismissAfter returns the lifetime for a toast kind.
func dismissAfter(kind ToastKind) time.Duration { return kind.look().lifetime }

// =============================================================================
// TOAST MODEL
// =============================================================================

// ErrorToast is one notification in the stack.
type ErrorToast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

func newToast(kind ToastKind, msg string) ErrorToast {
	return ErrorToast{Message: msg, Kind: kind, CreatedAt: time.Now(), Duration: dismissAfter(kind)}
}

// IsExpired reports whether the toast has outlived its duration.
func (t *ErrorToast) IsExpired() bool { return time.Since(t.CreatedAt) >= t.Duration }

// =============================================================================
// TOAST STACK
// =============================================================================

// maxVisibleToasts caps the stack; older toasts fall off the bottom.
const maxVisibleToasts = 5

// ToastManager owns the active toast stack. It runs entirely inside the
// program's update loop, fed by ToastTickMsg for expiry.
type ToastManager struct {
	toasts []ErrorToast
	nextID int
}

// NewToastManager returns an empty manager.
func NewToastManager() *ToastManager { return &ToastManager{} }

// AddToast inserts a toast at the top of the stack and returns its ID.
func (m *ToastManager) AddToast(t ErrorToast) int {
	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
	}

	m.toasts = slices.Insert(m.toasts, 0, t)
	m.toasts = m.toasts[:min(len(m.toasts), maxVisibleToasts)]
	return t.ID
}

// AddError surfaces a failed write.
func (m *ToastManager) AddError(msg string) int { return m.AddToast(newToast(ToastKindError, msg)) }

// AddWarning surfaces a degraded-but-working condition.
func (m *ToastManager) AddWarning(msg string) int { return m.AddToast(newToast(ToastKindWarning, msg)) }

// AddStatus surfaces a neutral notice.
func (m *ToastManager) AddStatus(msg string) int { return m.AddToast(newToast(ToastKindStatus, msg)) }

// AddSuccess surfaces a completed action.
func (m *ToastManager) AddSuccess(msg string) int { return m.AddToast(newToast(ToastKindSuccess, msg)) }

// Sweep drops expired toasts and returns what remains.
func (m *ToastManager) Sweep() []ErrorToast {
	m.toasts = slices.DeleteFunc(m.toasts, func(t ErrorToast) bool { return t.IsExpired() })
	return m.toasts
}

// GetToasts returns a copy of the stack, newest first.
func (m *ToastManager) GetToasts() []ErrorToast { return slices.Clone(m.toasts) }

// HasToasts reports whether anything is on screen.
func (m *ToastManager) HasToasts() bool { return len(m.toasts) > 0 }

// Clear empties the stack.
func (m *ToastManager) Clear() { m.toasts = nil }

// =============================================================================
// TICK PLUMBING
// =============================================================================

// toastTickInterval is how often the stack is swept for expired toasts.
const toastTickInterval = 100 * time.Millisecond

// ToastTickMsg drives expiry; the model re-arms it while toasts exist.
type ToastTickMsg struct{ Time time.Time }

// ToastTickCmd schedules the next expiry sweep.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(toastTickInterval, func(ts time.Time) tea.Msg { return ToastTickMsg{Time: ts} })
}

// =============================================================================
// RENDERING
// =============================================================================

// toastBox is the bordered shell; accent color and width come per render.
var (
	toastBox   = lipgloss.NewStyle().Background(styles.SurfaceDim).BorderStyle(lipgloss.RoundedBorder()).Padding(0, 2)
	toastStack = lipgloss.NewStyle().MarginRight(2).MarginBottom(1)
)

// RenderToast draws one bordered toast, wrapped to fit the terminal.
func RenderToast(t ErrorToast, width int) string {
	boxWidth := 60
	if width > 0 {
		boxWidth = min(boxWidth, width-8)
	}
	boxWidth = max(boxWidth, 30)

	look := t.Kind.look()
	iconView := lipgloss.NewStyle().Foreground(look.color).Bold(true).Render(look.icon + " ")

	msg := t.Message
	if len(msg) > boxWidth-10 {
		msg = wordWrap(msg, boxWidth-10)
	}
	msgView := lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(boxWidth - 8).Render(msg)

	return toastBox.BorderForeground(look.color).MaxWidth(boxWidth).Render(iconView + msgView)
}

// RenderToastStack stacks toasts vertically, newest at the top, ready for
// the caller to merge into the bottom-right corner of the frame.
func RenderToastStack(toasts []ErrorToast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, RenderToast(t, width))
	}
	return toastStack.Render(lipgloss.JoinVertical(lipgloss.Right, rendered...))
}
