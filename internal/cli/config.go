// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for aide.
//
// CLI: Settings inspection and mutation without editing files
//
// Command: config [show|get|set|reset|path]
// Short:   Inspect and change settings from the shell
//
// Subcommands:
//   show (default)      Print the active configuration by section
//   get <key>           Print a single configuration value
//   set <key> <value>   Change a setting and write it back
//   reset               Restore the default settings
//   path                Print the configuration file location
//
// Examples:
//   aide config                              Show current config (default)
//   aide config show                         Show current configuration
//   aide config show --json                  Config in JSON format
//   aide config get backend.base_url         Print one value (scriptable)
//   aide config set backend.base_url http://localhost:8000/api
//   aide config set backend.timeout_secs 30
//   aide config set ui.theme light
//   aide config set ui.show_timestamps false
//   aide config set archive.enabled false    Stop recording exchanges
//   aide config set export.format json
//   aide config set log.debug true           Enable diagnostic logging
//   aide config reset                        Reset to defaults
//   aide config path                         Show config file location
//
// Keys:
//   backend.base_url         Backend API root including the /api prefix
//   backend.timeout_secs     Timeout for listing/command requests (not /ask)
//   backend.max_retries      Retry budget for idempotent reads
//   backend.requests_per_sec Client-side request rate cap
//   backend.burst            Rate limiter burst allowance
//   ui.theme                 Color theme (dark/light/auto)
//   ui.compact_mode          Reduce transcript padding (true/false)
//   ui.show_timestamps       Relative timestamps next to messages (true/false)
//   ui.sidebar_width         Conversation list width in columns
//   archive.enabled          Record exchanges locally (true/false)
//   archive.path             Archive database file
//   export.dir               Directory export files are written to
//   export.format            Default export format (markdown/json)
//   log.debug                Verbose request/response logging (true/false)
//   log.file                 Log destination file
//
// Flags:
//   --json              Machine-readable output envelope
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// configPathStyle renders file locations in the muted italic accent.
var configPathStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

// =============================================================================
// KEY ALIASES
// =============================================================================

// configKeyAliases maps bare shorthand keys to their full dot-notation form.
// USABILITY: "aide config set theme light" reads better than requiring the
// section prefix for the handful of keys people actually change.
var configKeyAliases = map[string]string{
	"url":      "backend.base_url",
	"base_url": "backend.base_url",
	"backend":  "backend.base_url",
	"timeout":  "backend.timeout_secs",
	"theme":    "ui.theme",
	"format":   "export.format",
	"debug":    "log.debug",
}

// resolveConfigKey normalizes a user-supplied key to dot notation.
func resolveConfigKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if full, ok := configKeyAliases[key]; ok {
		return full
	}
	return key
}

// configPath returns the TOML config location, or "" when the home
// directory cannot be resolved.
func configPath() string {
	if p, err := config.ConfigPathTOML(); err == nil {
		return p
	}
	return ""
}

// loadOrDefaults returns the loaded configuration, substituting the
// defaults when the file is broken so read paths keep working. The
// warning goes to stderr to stay out of scripted stdout.
func loadOrDefaults(warn bool) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if warn {
			fmt.Fprintf(os.Stderr, "Warning: %v (falling back to defaults)\n", err)
		}
		return config.Default()
	}
	return cfg
}

// =============================================================================
// CONFIG SUBCOMMANDS
// =============================================================================

// configActions maps each subcommand to its handler. The empty key makes a
// bare "aide config" an alias for show.
var configActions = map[string]func(Args) error{
	"":      func(a Args) error { return handleConfigShow(a.JSON) },
	"show":  func(a Args) error { return handleConfigShow(a.JSON) },
	"get":   func(a Args) error { return handleConfigGet(a.ConfigKey, a.JSON) },
	"set":   func(a Args) error { return handleConfigSet(a.ConfigKey, a.ConfigVal) },
	"reset": func(Args) error { return handleConfigReset() },
	"path":  func(a Args) error { return handleConfigPath(a.JSON) },
}

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	act, ok := configActions[args.Subcommand]
	if !ok {
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"unknown config subcommand",
			"aide config [show|get|set|reset|path]")
	}
	return act(args)
}

// handleConfigShow displays the current configuration grouped by section.
// JSON mode serializes the config struct directly; it carries no secrets.
func handleConfigShow(jsonMode bool) error {
	if jsonMode {
		// Scripted callers still get a usable document when loading fails.
		return NewJSONResponse("config show", map[string]any{
			"config": loadOrDefaults(false),
			"path":   configPath(),
		}).Print()
	}

	cfg := loadOrDefaults(true)

	fmt.Println()
	fmt.Println(TitleStyle.Render("aide Configuration"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	sections := []struct {
		name string
		rows [][2]string
	}{
		{"backend", [][2]string{
			{"base_url:", cfg.Backend.BaseURL},
			{"timeout_secs:", strconv.Itoa(cfg.Backend.TimeoutSecs)},
			{"max_retries:", strconv.Itoa(cfg.Backend.MaxRetries)},
			{"requests_per_sec:", fmt.Sprintf("%g", cfg.Backend.RequestsPerSec)},
			{"burst:", strconv.Itoa(cfg.Backend.Burst)},
		}},
		{"ui", [][2]string{
			{"theme:", cfg.UI.Theme},
			{"compact_mode:", strconv.FormatBool(cfg.UI.CompactMode)},
			{"show_timestamps:", strconv.FormatBool(cfg.UI.ShowTimestamps)},
			{"sidebar_width:", strconv.Itoa(cfg.UI.SidebarWidth)},
		}},
		{"archive", [][2]string{
			{"enabled:", strconv.FormatBool(cfg.Archive.Enabled)},
			{"path:", orDefaultLabel(cfg.Archive.Path)},
		}},
		{"export", [][2]string{
			{"dir:", orDefaultLabel(cfg.Export.Dir)},
			{"format:", cfg.Export.Format},
		}},
		{"log", [][2]string{
			{"debug:", strconv.FormatBool(cfg.Log.Debug)},
			{"file:", orDefaultLabel(cfg.Log.File)},
		}},
	}

	for _, sec := range sections {
		fmt.Println(SectionStyle.Render("[" + sec.name + "]"))
		for _, row := range sec.rows {
			fmt.Printf("  %s%s\n", RenderLabel(row[0]), ValueStyle.Render(row[1]))
		}
		fmt.Println()
	}

	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(configPath()))
	fmt.Println()

	return nil
}

// orDefaultLabel substitutes a placeholder for empty path-like values, which
// mean "derive the default location".
func orDefaultLabel(val string) string { return cmp.Or(val, "(default)") }

// handleConfigGet prints a single configuration value.
// Plain output stays unstyled so it can feed shell scripts directly.
func handleConfigGet(key string, jsonMode bool) error {
	if key == "" {
		return ErrMissingArgument("key", "aide config get <key>")
	}

	cfg := loadOrDefaults(true)
	key = resolveConfigKey(key)
	value, err := cfg.Get(key)
	if err != nil {
		return unknownConfigKeyError(key)
	}

	if jsonMode {
		return NewJSONResponse("config get", map[string]any{
			"key":   key,
			"value": value,
		}).Print()
	}

	fmt.Printf("%v\n", value)
	return nil
}

// handleConfigSet validates and persists one key=value change.
func handleConfigSet(key, val string) error {
	if key == "" {
		return ErrMissingArgument("key", "aide config set <key> <value>")
	}
	if val == "" {
		return ErrMissingArgument("value", fmt.Sprintf("aide config set %s <value>", key))
	}

	cfg := loadOrDefaults(true)
	key = resolveConfigKey(key)
	if err := cfg.Set(key, val); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return unknownConfigKeyError(key)
		}
		return NewValidationError(key, val, err.Error())
	}

	// Validate before saving so a bad value never lands on disk.
	if err := cfg.Validate(); err != nil {
		return NewValidationError(key, val, err.Error())
	}

	if err := config.Save(cfg); err != nil {
		return NewCommandError("config", "save configuration", "could not write config file", err)
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, val)
	return nil
}

// handleConfigReset writes the default settings over the current file.
func handleConfigReset() error {
	if err := config.Save(config.Default()); err != nil {
		return NewCommandError("config", "reset configuration", "could not write config file", err)
	}

	fmt.Printf("%s Configuration reset to defaults\n", SuccessStyle.Render("[OK]"))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(configPath()))

	return nil
}

// handleConfigPath prints where the TOML file lives; JSON mode adds an
// existence flag so scripts can skip a stat of their own.
func handleConfigPath(jsonMode bool) error {
	p := configPath()
	_, statErr := os.Stat(p)

	if jsonMode {
		return NewJSONResponse("config path", map[string]any{
			"path":   p,
			"exists": !os.IsNotExist(statErr),
		}).Print()
	}

	fmt.Println(p)
	if os.IsNotExist(statErr) {
		fmt.Fprintf(os.Stderr, "%s (no file yet - created on first save)\n", DimStyle.Render("Note"))
	}
	return nil
}

// unknownConfigKeyError builds the error for an unrecognized key, listing
// every valid key so the fix is one screen away.
func unknownConfigKeyError(key string) error {
	return NewValidationError("key", key,
		"unknown config key\n\nValid keys:\n  "+strings.Join(config.AllKeys(), "\n  "))
}
