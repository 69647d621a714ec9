// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection, width-aware wrapping, and color control.
//
// Commands behave differently piped than interactive: no colors, no
// prompts, no passphrase reads. Everything that branches on the
// terminal goes through here.

package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY CHECKS
// =============================================================================

// CanPrompt reports whether interactive prompts are possible; they
// require stdin to be a terminal.
func CanPrompt() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// IsStdoutTTY reports whether stdout is a terminal. Piped output gets
// plain text.
func IsStdoutTTY() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// =============================================================================
// WIDTH DETECTION AND WRAPPING
// =============================================================================

const (
	defaultTerminalWidth = 80
	minTerminalWidth     = 40
)

// terminalWidth returns the terminal width, clamped to at least 40
// columns, falling back to 80 when detection fails.
func terminalWidth() int {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		return defaultTerminalWidth
	}
	return max(cols, minTerminalWidth)
}

// wrapText wraps text at word boundaries to fit w columns, preserving
// existing newlines. A w of 0 or less uses the detected terminal width.
// A two-column margin is kept for readability.
func wrapText(text string, w int) string {
	if w <= 0 {
		w = terminalWidth()
	}
	if w > 10 {
		w -= 2
	}

	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		wrapped = append(wrapped, wrapLine(line, w)...)
	}
	return strings.Join(wrapped, "\n")
}

// wrapLine splits one line into width-bounded lines. Words longer than
// the width land on their own line unbroken.
func wrapLine(line string, w int) []string {
	if len(line) <= w {
		return []string{line}
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= w {
			current += " " + word
			continue
		}
		out = append(out, current)
		current = word
	}
	return append(out, current)
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

var (
	colorsOn   bool
	colorsOnce sync.Once
)

// ColorsEnabled reports whether output should be colored. NO_COLOR
// (https://no-color.org/) disables, FORCE_COLOR enables, and otherwise
// the stdout TTY decides. The decision is cached for the process.
func ColorsEnabled() bool {
	colorsOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorsOn = false
		case os.Getenv("FORCE_COLOR") != "":
			colorsOn = true
		default:
			colorsOn = IsStdoutTTY()
		}
	})
	return colorsOn
}

// colorProfile returns the termenv profile to render with: Ascii when
// colors are off, otherwise whatever the terminal supports.
func colorProfile() termenv.Profile {
	if ColorsEnabled() {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// =============================================================================
// PASSPHRASE INPUT
// =============================================================================

// TTYRequiredError is returned when an operation needs a terminal and
// stdin is not one. It maps to the usage exit code.
type TTYRequiredError struct {
	Op string
}

func (e *TTYRequiredError) Error() string {
	if e.Op == "" {
		return "interactive input requires a terminal"
	}
	return "cannot " + e.Op + ": stdin is not a terminal"
}

// ReadPassphrase prompts on stderr and reads a passphrase from stdin
// without echoing it, so it reaches neither the screen nor shell
// history.
func ReadPassphrase(prompt string) (string, error) {
	if !CanPrompt() {
		return "", &TTYRequiredError{Op: "read a passphrase"}
	}

	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(pass), nil
}
