// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the aide command handlers.
// This file holds helpers shared across the command handlers: client
// construction, display formatting, and output path validation.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/config"
)

// newAPIClient builds a backend client from the active configuration.
// Returns api.ErrNotConfigured when no base URL is set.
func newAPIClient() (*api.Client, error) {
	cfg := config.Global()
	if cfg.Backend.BaseURL == "" {
		return nil, api.ErrNotConfigured
	}

	client := api.NewClient(cfg.Backend.BaseURL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Backend.MaxRetries)
	if cfg.Backend.RequestsPerSec > 0 {
		client = client.WithRateLimit(cfg.Backend.RequestsPerSec, cfg.Backend.Burst)
	}
	return client, nil
}

// =============================================================================
// DISPLAY FORMATTING
// =============================================================================

// fmtDuration renders a duration compactly: 340ms, 2.5s, 4m12s, 1h30m.
func fmtDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// fmtBytes renders a byte count with binary units, capped at GB.
func fmtBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

// promptInput reads one trimmed line from stdin after showing msg.
func promptInput(msg string) string {
	fmt.Print(msg)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

// =============================================================================
// OUTPUT PATH VALIDATION
// =============================================================================

// ValidateOutputPath resolves p and confirms it stays inside one of
// the writable roots (home, working directory, temp). Any path carrying
// a traversal component is rejected outright.
func ValidateOutputPath(p string) (string, error) {
	if strings.Contains(p, "..") {
		return "", errors.New("refusing path with traversal components")
	}

	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("cannot resolve path: %w", err)
	}

	roots := []string{os.TempDir()}
	if home, herr := os.UserHomeDir(); herr == nil {
		roots = append(roots, home)
	}
	if wd, werr := os.Getwd(); werr == nil {
		roots = append(roots, wd)
	}
	for _, root := range roots {
		if pathWithin(abs, root) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("path must be within home, cwd, or temp directory")
}

// pathWithin reports whether path sits at or below dir, comparing on
// clean path boundaries so "/home/userEVIL" cannot match "/home/user".
func pathWithin(path, dir string) bool {
	path, dir = filepath.Clean(path), filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
