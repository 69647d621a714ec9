// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for aide.
//
// Settings come from a TOML or JSON file under ~/.aide, filled out with
// built-in defaults, overridden by AIDE_* environment variables, validated
// before use, and reloaded live when the file changes on disk.
//
// Sources listed first win over those below them:
//   - Environment variables (AIDE_*)
//   - ~/.aide/config.toml
//   - ~/.aide/config.json
//   - Compiled-in defaults
//
// The main types are Config, the root structure holding every setting
// group; BackendConfig, UIConfig, ArchiveConfig, ExportConfig, and
// LogConfig for the individual sections; and Watcher, which swaps the
// process-wide config when the file changes on disk.
//
// Most callers read through the process-wide instance, which loads
// lazily and never fails (it falls back to defaults with a warning):
//
//	cfg := config.Global()
//	base := cfg.Backend.BaseURL
//	theme := cfg.UI.Theme
package config
