// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for aide.
//
// Settings may live in a TOML or JSON file; whatever is on disk is
// topped up with built-in defaults, overridden from AIDE_* environment
// variables, and validated before use.
//
// Candidate files, first hit wins:
//   - ~/.aide/config.toml
//   - ~/.aide/config.json
//   - Built-in defaults when neither exists
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/aide-tui/internal/util"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the root structure holding every setting group. Field tags
// cover both the TOML and JSON file forms.
type Config struct {
	// Version tracks the config schema version for migrations.
	Version string `toml:"version" json:"version"`

	// Backend holds connection settings for the assistant backend.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// UI holds terminal interface settings.
	UI UIConfig `toml:"ui" json:"ui"`

	// Archive holds local conversation archive settings.
	Archive ArchiveConfig `toml:"archive" json:"archive"`

	// Export holds conversation export settings.
	Export ExportConfig `toml:"export" json:"export"`

	// Log holds diagnostic logging settings.
	Log LogConfig `toml:"log" json:"log"`
}

// BackendConfig configures the HTTP gateway to the assistant backend.
type BackendConfig struct {
	// BaseURL is the backend API root, including the /api prefix.
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds listing and command requests. Exchange requests
	// (/ask) are never subject to this timeout; the assistant may take
	// arbitrarily long to answer.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// MaxRetries is the retry budget for idempotent reads.
	MaxRetries int `toml:"max_retries" json:"max_retries"`

	// RequestsPerSec caps the client-side request rate.
	RequestsPerSec float64 `toml:"requests_per_sec" json:"requests_per_sec"`

	// Burst is the rate limiter burst allowance.
	Burst int `toml:"burst" json:"burst"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme selects the color theme: dark, light, or auto.
	Theme string `toml:"theme" json:"theme"`

	// CompactMode reduces vertical padding in the transcript.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`

	// ShowTimestamps renders a relative timestamp next to each message.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`

	// SidebarWidth is the conversation list width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// ArchiveConfig configures the local conversation archive.
type ArchiveConfig struct {
	// Enabled turns on the append-only local archive of exchanges.
	Enabled bool `toml:"enabled" json:"enabled"`

	// Path is the archive database file. Empty means <config dir>/archive.db.
	Path string `toml:"path" json:"path"`
}

// ExportConfig configures conversation export.
type ExportConfig struct {
	// Dir is the directory export files are written to. Empty means the
	// current working directory.
	Dir string `toml:"dir" json:"dir"`

	// Format is the default export format: markdown or json.
	Format string `toml:"format" json:"format"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Debug enables verbose request/response logging.
	Debug bool `toml:"debug" json:"debug"`

	// File is the log destination. Empty means <config dir>/aide.log when
	// debug logging is enabled, discard otherwise. The TUI owns stdout, so
	// logs never go there.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default is the full built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",

		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000/api",
			TimeoutSecs:    15,
			MaxRetries:     2,
			RequestsPerSec: 8,
			Burst:          16,
		},

		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			ShowTimestamps: true,
			SidebarWidth:   32,
		},

		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "",
		},

		Export: ExportConfig{
			Dir:    "",
			Format: "markdown",
		},

		Log: LogConfig{
			Debug: false,
			File:  "",
		},
	}
}

// SetDefaults fills zero-valued fields with their defaults. MaxRetries is
// left alone: zero is a meaningful "no retries" setting and cannot be told
// apart from unset.
func (c *Config) SetDefaults() {
	d := Default()

	stringDefault(&c.Version, d.Version)
	stringDefault(&c.Backend.BaseURL, d.Backend.BaseURL)
	intDefault(&c.Backend.TimeoutSecs, d.Backend.TimeoutSecs)
	if c.Backend.RequestsPerSec == 0 {
		c.Backend.RequestsPerSec = d.Backend.RequestsPerSec
	}
	intDefault(&c.Backend.Burst, d.Backend.Burst)
	stringDefault(&c.UI.Theme, d.UI.Theme)
	intDefault(&c.UI.SidebarWidth, d.UI.SidebarWidth)
	stringDefault(&c.Export.Format, d.Export.Format)
}

func stringDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func intDefault(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// =============================================================================
// FILE LOCATIONS
// =============================================================================

// ConfigDir returns the aide configuration directory path.
func ConfigDir() (string, error) {
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(h, ".aide"), nil
}

func configFilePath(name string) (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// Locations of the two accepted config file formats.
func ConfigPathTOML() (string, error) { return configFilePath("config.toml") }
func ConfigPathJSON() (string, error) { return configFilePath("config.json") }

// ArchivePath returns the effective archive database path for this config.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	return configFilePath("archive.db")
}

// LogPath returns the effective log file path for this config, or empty
// when logging is disabled.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	if !c.Log.Debug {
		return "", nil
	}
	return configFilePath("aide.log")
}

// EnsureConfigDir creates ~/.aide if it does not exist yet.
func EnsureConfigDir() error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(d, 0755)
}

// ensureSecurePermissions tightens a config file to 0600. The backend URL
// may embed credentials, so the file must stay owner-only.
func ensureSecurePermissions(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		if err := os.Chmod(p, 0600); err != nil {
			return fmt.Errorf("tighten permissions (was %o): %w", perm, err)
		}
	}
	return nil
}

// warnInsecure tightens permissions, warning instead of failing when the
// filesystem does not support it.
func warnInsecure(p string) {
	if err := ensureSecurePermissions(p); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not tighten permissions on %s: %v\n", p, err)
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the config file(s). TOML wins over JSON
// when both exist; a file that fails to parse is skipped in favor of the
// next candidate. Environment overrides, migration, defaults, and
// validation are applied to whatever was decoded.
func Load() (*Config, error) {
	c := Default()

	attempts := []struct {
		label string
		path  func() (string, error)
		load  func(*Config, string) error
	}{
		{"TOML", ConfigPathTOML, LoadTOML},
		{"JSON", ConfigPathJSON, LoadJSON},
	}

	var parseErr error
	for _, a := range attempts {
		path, err := a.path()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := a.load(c, path); err != nil {
			parseErr = fmt.Errorf("load %s config: %w", a.label, err)
			continue
		}
		return finishLoad(c)
	}

	// No usable file. Finish with defaults, reporting any parse failure
	// alongside the working config so the caller can warn about it.
	c, err := finishLoad(c)
	if err != nil {
		return nil, err
	}
	return c, parseErr
}

// finishLoad applies the post-decode pipeline: environment overrides,
// migration, defaults, and validation.
func finishLoad(c *Config) (*Config, error) {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate config: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadTOML decodes a TOML config file over c. Decoding alone applies no
// defaults and no validation; callers finish through finishLoad.
func LoadTOML(c *Config, path string) error {
	warnInsecure(path)
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON config file over c.
func LoadJSON(c *Config, path string) error {
	warnInsecure(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format is chosen by extension, defaulting to TOML.
func LoadFromPath(p string) (*Config, error) {
	c := &Config{}

	load, label := LoadTOML, "TOML"
	if strings.HasSuffix(p, ".json") {
		load, label = LoadJSON, "JSON"
	}
	if err := load(c, p); err != nil {
		return nil, fmt.Errorf("load %s config from %s: %w", label, p, err)
	}
	return finishLoad(c)
}

// =============================================================================
// SAVING
// =============================================================================

const tomlHeader = `# aide configuration file
# Generated by aide - edit with care
#
# Documentation: https://github.com/jeranaias/aide-tui

`

// Save writes c to the default TOML location.
func Save(c *Config) error {
	p, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(c, p)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	// The file may have existed with looser permissions.
	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("tighten config file permissions: %w", err)
	}

	if _, err := f.WriteString(tomlHeader); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file. The write is atomic so
// a crash cannot leave a truncated config behind.
func SaveJSON(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION AND MIGRATION
// =============================================================================

// ValidationError pins one violation to the dot-notation key it was
// found under.
type ValidationError struct {
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return e.Key + ": " + e.Message
}

// ValidateErrors aggregates every violation found in one pass.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return strings.Join(parts, "; ")
}

// Validate checks every field against its allowed range and collects all
// violations rather than stopping at the first.
func (c *Config) Validate() error {
	var errs ValidateErrors
	fail := func(key, format string, args ...any) {
		errs = append(errs, ValidationError{Key: key, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		fail("backend.base_url", "invalid URL: %v", err)
	} else {
		if u.Scheme != "http" && u.Scheme != "https" {
			fail("backend.base_url", "scheme must be http or https, got '%s'", u.Scheme)
		}
		if u.Host == "" {
			fail("backend.base_url", "missing host")
		}
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 300 {
		fail("backend.timeout_secs", "must be 1-300, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		fail("backend.max_retries", "must be 0-10, got %d", c.Backend.MaxRetries)
	}
	if c.Backend.RequestsPerSec <= 0 {
		fail("backend.requests_per_sec", "must be positive")
	}
	if c.Backend.Burst < 1 {
		fail("backend.burst", "must be at least 1, got %d", c.Backend.Burst)
	}

	if !slices.Contains([]string{"dark", "light", "auto"}, strings.ToLower(c.UI.Theme)) {
		fail("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}
	if c.UI.SidebarWidth < 20 || c.UI.SidebarWidth > 80 {
		fail("ui.sidebar_width", "must be 20-80 columns, got %d", c.UI.SidebarWidth)
	}

	if !slices.Contains([]string{"markdown", "json"}, strings.ToLower(c.Export.Format)) {
		fail("export.format", "invalid format '%s', must be one of: markdown, json", c.Export.Format)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Migrate rewrites values older releases accepted into their current
// spellings.
func (c *Config) Migrate() error {
	// "system" theme is deprecated, now aliased to "auto"
	if strings.ToLower(c.UI.Theme) == "system" {
		c.UI.Theme = "auto"
	}

	// Old releases accepted "md" as an export format name
	if strings.ToLower(c.Export.Format) == "md" {
		c.Export.Format = "markdown"
	}

	// Normalize the backend URL: strip a trailing slash so path joining
	// stays predictable.
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	return nil
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// ApplyEnvOverrides lets the environment win over anything read from the
// file:
//   - AIDE_BACKEND_URL: overrides backend.base_url
//   - AIDE_TIMEOUT_SECS: overrides backend.timeout_secs
//   - AIDE_THEME: overrides ui.theme
//   - AIDE_DEBUG: set to "1" or "true" to enable debug logging
//   - AIDE_ARCHIVE: set to "0" or "false" to disable the local archive
//   - AIDE_ARCHIVE_PATH: overrides archive.path
//   - AIDE_EXPORT_DIR: overrides export.dir
func (c *Config) ApplyEnvOverrides() {
	overrides := []struct {
		name  string
		apply func(string)
	}{
		{"AIDE_BACKEND_URL", func(v string) { c.Backend.BaseURL = v }},
		{"AIDE_TIMEOUT_SECS", func(v string) {
			// An unparseable value leaves the configured one alone.
			if secs, err := strconv.Atoi(v); err == nil {
				c.Backend.TimeoutSecs = secs
			}
		}},
		{"AIDE_THEME", func(v string) { c.UI.Theme = v }},
		{"AIDE_DEBUG", func(v string) { c.Log.Debug = isTruthy(v) }},
		{"AIDE_ARCHIVE", func(v string) { c.Archive.Enabled = !isFalsy(v) }},
		{"AIDE_ARCHIVE_PATH", func(v string) { c.Archive.Path = v }},
		{"AIDE_EXPORT_DIR", func(v string) { c.Export.Dir = v }},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(v)
		}
	}
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true"
}

func isFalsy(s string) bool {
	s = strings.ToLower(s)
	return s == "0" || s == "false"
}

// =============================================================================
// DOT-NOTATION ACCESS
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (any, error) {
	field, err := c.fieldByPath(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type, matching how the CLI
// provides them.
func (c *Config) Set(key string, value any) error {
	field, err := c.fieldByPath(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// fieldByPath walks a dot-notation key to the reflect.Value it names.
func (c *Config) fieldByPath(key string) (reflect.Value, error) {
	segs := strings.Split(key, ".")
	cur := reflect.ValueOf(c).Elem()
	for i, seg := range segs {
		if cur.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(segs[:i], "."))
		}
		cur = fieldByTag(cur, seg)
		if !cur.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(segs[:i+1], "."))
		}
	}
	return cur, nil
}

// fieldByTag returns the field of struct v whose toml tag or Go name
// matches name, case-insensitively. Dashes are accepted for underscores.
func fieldByTag(v reflect.Value, name string) reflect.Value {
	name = strings.ReplaceAll(name, "-", "_")
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if strings.EqualFold(tag, name) || strings.EqualFold(t.Field(i).Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// setFieldValue assigns value to field, converting string input to the
// field's kind.
func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		return setFieldString(field, s)
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()):
		field.Set(rv.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
	return nil
}

func setFieldString(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %v", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %v", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		field.SetBool(isTruthy(s) || strings.ToLower(s) == "yes")
	default:
		return fmt.Errorf("cannot assign string to %s", field.Type())
	}
	return nil
}

// =============================================================================
// INTROSPECTION
// =============================================================================

// AllKeys lists every settable key in dot notation, in display order.
func AllKeys() []string {
	return []string{
		"version",
		"backend.base_url",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.requests_per_sec",
		"backend.burst",
		"ui.theme",
		"ui.compact_mode",
		"ui.show_timestamps",
		"ui.sidebar_width",
		"archive.enabled",
		"archive.path",
		"export.dir",
		"export.format",
		"log.debug",
		"log.file",
	}
}

// Clone creates a copy of the configuration. The config holds only value
// types, so a struct copy is a full copy.
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}

// String renders the config as indented JSON for debug output.
func (c *Config) String() string {
	out, _ := json.MarshalIndent(c, "", "  ")
	return string(out)
}

// =============================================================================
// PROCESS-WIDE INSTANCE
// =============================================================================

var (
	global     *Config
	globalOnce sync.Once
	globalMu   sync.RWMutex
)

// Global hands out the process-wide config, loading it on first use.
func Global() *Config {
	globalOnce.Do(func() {
		c, err := Load()
		if err != nil {
			// Fall back to defaults rather than refusing to start.
			fmt.Fprintf(os.Stderr, "Warning: %v (continuing with defaults)\n", err)
		}
		if c == nil {
			c = Default()
		}
		global = c
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// ReloadGlobal re-reads the file and swaps the process-wide config.
func ReloadGlobal() error {
	c, err := Load()
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	global = c
	return nil
}

// SetGlobal swaps the process-wide config, for startup wiring and tests.
func SetGlobal(c *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = c
}

