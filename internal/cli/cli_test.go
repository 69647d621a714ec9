// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Coverage for the cli package: argument splitting, title derivation,
// preview clipping, exit-code mapping, and the Parse() entry point that
// main dispatches on.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/aide-tui/internal/api"
)

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestArgParserSplitting(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSub string
		check   func(*testing.T, *ArgParser)
	}{
		{
			name:    "bare subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "value flag after subcommand",
			args:    []string{"chat_1712", "--limit", "50"},
			wantSub: "chat_1712",
			check: func(t *testing.T, p *ArgParser) {
				if got := p.Flag("limit"); got != "50" {
					t.Errorf("Flag(limit) = %q, want %q", got, "50")
				}
			},
		},
		{
			name:    "equals form",
			args:    []string{"chat_1712", "--format=json"},
			wantSub: "chat_1712",
			check: func(t *testing.T, p *ArgParser) {
				if got := p.Flag("format"); got != "json" {
					t.Errorf("Flag(format) = %q, want %q", got, "json")
				}
			},
		},
		{
			name:    "bare bool flag",
			args:    []string{"chat_1712", "--encrypt"},
			wantSub: "chat_1712",
			check: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("encrypt") {
					t.Error("BoolFlag(encrypt) = false, want true")
				}
			},
		},
		{
			name:    "explicit boolean value",
			args:    []string{"chat_1712", "--encrypt=false"},
			wantSub: "chat_1712",
			check: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("encrypt") {
					t.Error("BoolFlag(encrypt) = true, want false")
				}
			},
		},
		{
			name:    "several positionals",
			args:    []string{"rate", "limiter", "backoff"},
			wantSub: "rate",
			check: func(t *testing.T, p *ArgParser) {
				if got := p.PositionalCount(); got != 3 {
					t.Errorf("PositionalCount() = %d, want 3", got)
				}
				joined := strings.Join(p.PositionalFrom(0), " ")
				if joined != "rate limiter backoff" {
					t.Errorf("PositionalFrom(0) joined = %q, want %q", joined, "rate limiter backoff")
				}
			},
		},
		{
			name:    "flags mixed into positionals",
			args:    []string{"set", "--json", "greeting", "hello", "there"},
			wantSub: "set",
			check: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) = false, want true")
				}
				if got := p.Positional(1); got != "greeting" {
					t.Errorf("Positional(1) = %q, want %q", got, "greeting")
				}
				joined := JoinPositionalArgs(p, 2)
				if joined != "hello there" {
					t.Errorf("JoinPositionalArgs(2) = %q, want %q", joined, "hello there")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.Subcommand(); got != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", got, tt.wantSub)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestArgParserIntFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		flag     string
		fallback int
		want     int
	}{
		{
			name:     "set",
			args:     []string{"term", "--limit", "10"},
			flag:     "limit",
			fallback: 50,
			want:     10,
		},
		{
			name:     "missing falls back",
			args:     []string{"term"},
			flag:     "limit",
			fallback: 50,
			want:     50,
		},
		{
			name:     "garbage falls back",
			args:     []string{"term", "--limit", "abc"},
			flag:     "limit",
			fallback: 50,
			want:     50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.FlagIntOrDefault(tt.flag, tt.fallback); got != tt.want {
				t.Errorf("FlagIntOrDefault(%q) = %d, want %d", tt.flag, got, tt.want)
			}
		})
	}
}

func TestArgParserLookups(t *testing.T) {
	t.Run("has flag", func(t *testing.T) {
		p := NewArgParser([]string{"chat_1712", "--encrypt", "--limit", "50"})
		if !p.HasFlag("encrypt") {
			t.Error("HasFlag(encrypt) = false, want true")
		}
		if !p.HasFlag("limit") {
			t.Error("HasFlag(limit) = false, want true")
		}
		if p.HasFlag("nonexistent") {
			t.Error("HasFlag(nonexistent) = true, want false")
		}
	})

	t.Run("string default", func(t *testing.T) {
		p := NewArgParser([]string{"chat_1712", "--format", "json"})
		if got := p.FlagOrDefault("format", "markdown"); got != "json" {
			t.Errorf("FlagOrDefault(format) = %q, want the set value", got)
		}
		if got := p.FlagOrDefault("output", "markdown"); got != "markdown" {
			t.Errorf("FlagOrDefault(output) = %q, want the fallback", got)
		}
	})

	t.Run("flags only", func(t *testing.T) {
		p := NewArgParser([]string{"--encrypt", "--json"})
		if got := p.Subcommand(); got != "" {
			t.Errorf("Subcommand() = %q, want empty", got)
		}
		if !p.BoolFlag("encrypt") || !p.BoolFlag("json") {
			t.Error("both bool flags should read true")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		p := NewArgParser(nil)
		if got := p.Subcommand(); got != "" {
			t.Errorf("Subcommand() = %q, want empty", got)
		}
		if got := p.PositionalCount(); got != 0 {
			t.Errorf("PositionalCount() = %d, want 0", got)
		}
	})
}

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short question passes through",
			input: "What is a goroutine?",
			want:  "What is a goroutine?",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "exactly forty runes unchanged",
			input: strings.Repeat("a", 40),
			want:  strings.Repeat("a", 40),
		},
		{
			name:  "forty-one runes truncated with ellipsis",
			input: strings.Repeat("a", 41),
			want:  strings.Repeat("a", 40) + "...",
		},
		{
			name:  "long question truncated",
			input: "Can you explain how the scheduler decides which goroutine runs next?",
			want:  "Can you explain how the scheduler decide...",
		},
		{
			name:  "multibyte runes counted as characters not bytes",
			input: strings.Repeat("世", 41),
			want:  strings.Repeat("世", 40) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTitle(tt.input)
			if got != tt.want {
				t.Errorf("deriveTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// PREVIEW AND SNIPPET TESTS
// =============================================================================

func TestPreviewFromSummary(t *testing.T) {
	tests := []struct {
		name    string
		last    string
		want    string
		wantMax int
	}{
		{
			name: "empty message yields empty preview",
			last: "",
			want: "",
		},
		{
			name: "short message passes through",
			last: "Sure, here is the plan.",
			want: "Sure, here is the plan.",
		},
		{
			name: "whitespace runs collapse to single spaces",
			last: "line one\nline two\t\tindented",
			want: "line one line two indented",
		},
		{
			name:    "long message bounded at preview width",
			last:    strings.Repeat("x", 200),
			wantMax: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := previewFromSummary(api.ChatSummary{LastMessage: tt.last})
			if tt.wantMax > 0 {
				if n := len([]rune(got)); n > tt.wantMax {
					t.Errorf("preview length = %d runes, want <= %d", n, tt.wantMax)
				}
				if !strings.HasSuffix(got, "...") {
					t.Errorf("truncated preview %q should end with ellipsis", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("previewFromSummary(%q) = %q, want %q", tt.last, got, tt.want)
			}
		})
	}
}

func TestSearchSnippet(t *testing.T) {
	t.Run("flattens newlines", func(t *testing.T) {
		got := searchSnippet("  how do I\nconfigure the\nrate limiter?  ")
		want := "how do I configure the rate limiter?"
		if got != want {
			t.Errorf("searchSnippet() = %q, want %q", got, want)
		}
	})

	t.Run("bounds long answers", func(t *testing.T) {
		got := searchSnippet(strings.Repeat("y", 500))
		if n := len([]rune(got)); n > 100 {
			t.Errorf("snippet length = %d runes, want <= 100", n)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncated snippet %q should end with ellipsis", got)
		}
	})
}

// =============================================================================
// CONFIG KEY RESOLUTION TESTS
// =============================================================================

func TestResolveConfigKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"theme", "ui.theme"},
		{"THEME", "ui.theme"},
		{"url", "backend.base_url"},
		{"timeout", "backend.timeout_secs"},
		{"  format  ", "export.format"},
		{"backend.base_url", "backend.base_url"},
		{"archive.enabled", "archive.enabled"},
		{"UI.Theme", "ui.theme"},
		{"unknown_key", "unknown_key"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := resolveConfigKey(tt.input)
			if got != tt.want {
				t.Errorf("resolveConfigKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// EXIT CODE MAPPING TESTS
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error is success",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "validation error maps to usage",
			err:  NewValidationError("chat-id", "", "chat ID is required"),
			want: ExitUsageError,
		},
		{
			name: "wrapped validation error maps to usage",
			err:  fmt.Errorf("export: %w", NewValidationError("format", "xml", "unsupported format")),
			want: ExitUsageError,
		},
		{
			name: "not found error maps to not found",
			err:  NewNotFoundError("chat", "chat_9999"),
			want: ExitNotFoundError,
		},
		{
			name: "unconfigured backend maps to config",
			err:  fmt.Errorf("creating client: %w", api.ErrNotConfigured),
			want: ExitConfigError,
		},
		{
			name: "transport failure maps to network",
			err:  &api.RequestError{Op: "list chats", Err: errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")},
			want: ExitNetworkError,
		},
		{
			name: "backend failure maps to backend",
			err:  &api.APIError{Op: "ask", Status: 500, Message: "internal server error"},
			want: ExitBackendError,
		},
		{
			name: "missing file maps to not found",
			err:  fmt.Errorf("open archive: %w", os.ErrNotExist),
			want: ExitNotFoundError,
		},
		{
			name: "permission error maps to IO",
			err:  fmt.Errorf("write export: %w", os.ErrPermission),
			want: ExitIOError,
		},
		{
			name: "message content categorizes network",
			err:  errors.New("host unreachable"),
			want: ExitNetworkError,
		},
		{
			name: "unknown error is general",
			err:  errors.New("something odd happened"),
			want: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCode(tt.err)
			if got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// =============================================================================
// PARSE DISPATCH
// =============================================================================

// TestParseDispatch drives Parse through os.Args the way main does, one
// full command line per case.
func TestParseDispatch(t *testing.T) {
	realArgs := os.Args
	t.Cleanup(func() { os.Args = realArgs })

	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{
			name:    "no args starts TUI",
			argv:    []string{"aide"},
			wantCmd: CmdTUI,
		},
		{
			name:    "plain ask",
			argv:    []string{"aide", "ask", "What is a mutex?"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.Query != "What is a mutex?" {
					t.Errorf("Query = %q, want %q", a.Query, "What is a mutex?")
				}
			},
		},
		{
			name:    "ask with chat flag",
			argv:    []string{"aide", "ask", "-c", "chat_1712", "And why?"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.ChatID != "chat_1712" {
					t.Errorf("ChatID = %q, want %q", a.ChatID, "chat_1712")
				}
				if a.Query != "And why?" {
					t.Errorf("Query = %q, want %q", a.Query, "And why?")
				}
			},
		},
		{
			name:    "ask with chat equals flag",
			argv:    []string{"aide", "ask", "--chat=chat_1712", "Follow up"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.ChatID != "chat_1712" {
					t.Errorf("ChatID = %q, want %q", a.ChatID, "chat_1712")
				}
			},
		},
		{
			name:    "ask with plain flag",
			argv:    []string{"aide", "ask", "--plain", "Question"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if !a.Plain {
					t.Error("Plain = false, want true")
				}
			},
		},
		{
			name:    "quiet ask",
			argv:    []string{"aide", "ask", "-q", "Question"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if !a.Quiet {
					t.Error("Quiet = false, want true")
				}
			},
		},
		{
			name:    "bare chat",
			argv:    []string{"aide", "chat"},
			wantCmd: CmdChat,
		},
		{
			name:    "chat resume",
			argv:    []string{"aide", "chat", "-c", "chat_1712"},
			wantCmd: CmdChat,
			check: func(t *testing.T, a Args) {
				if a.ChatID != "chat_1712" {
					t.Errorf("ChatID = %q, want %q", a.ChatID, "chat_1712")
				}
			},
		},
		{
			name:    "chats listing",
			argv:    []string{"aide", "chats"},
			wantCmd: CmdChats,
		},
		{
			name:    "chats alias ls",
			argv:    []string{"aide", "ls"},
			wantCmd: CmdChats,
		},
		{
			name:    "chats with json flag",
			argv:    []string{"aide", "chats", "--json"},
			wantCmd: CmdChats,
			check: func(t *testing.T, a Args) {
				if !a.JSON {
					t.Error("JSON = false, want true")
				}
			},
		},
		{
			name:    "export keeps raw args",
			argv:    []string{"aide", "export", "chat_1712", "--format", "json"},
			wantCmd: CmdExport,
			check: func(t *testing.T, a Args) {
				want := []string{"chat_1712", "--format", "json"}
				if len(a.Raw) != len(want) {
					t.Fatalf("Raw = %v, want %v", a.Raw, want)
				}
				for i := range want {
					if a.Raw[i] != want[i] {
						t.Errorf("Raw[%d] = %q, want %q", i, a.Raw[i], want[i])
					}
				}
			},
		},
		{
			name:    "search keeps raw args",
			argv:    []string{"aide", "search", "rate", "limiter"},
			wantCmd: CmdSearch,
			check: func(t *testing.T, a Args) {
				if len(a.Raw) != 2 {
					t.Errorf("Raw = %v, want 2 terms", a.Raw)
				}
			},
		},
		{
			name:    "stats",
			argv:    []string{"aide", "stats"},
			wantCmd: CmdStats,
		},
		{
			name:    "memory keeps raw args",
			argv:    []string{"aide", "memory", "set", "greeting", "hello there"},
			wantCmd: CmdMemory,
			check: func(t *testing.T, a Args) {
				if len(a.Raw) == 0 || a.Raw[0] != "set" {
					t.Errorf("Raw = %v, want set subcommand first", a.Raw)
				}
			},
		},
		{
			name:    "config set",
			argv:    []string{"aide", "config", "set", "ui.theme", "light"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "set" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "set")
				}
				if a.ConfigKey != "ui.theme" {
					t.Errorf("ConfigKey = %q, want %q", a.ConfigKey, "ui.theme")
				}
				if a.ConfigVal != "light" {
					t.Errorf("ConfigVal = %q, want %q", a.ConfigVal, "light")
				}
			},
		},
		{
			name:    "config show default",
			argv:    []string{"aide", "config"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", a.Subcommand)
				}
			},
		},
		{
			name:    "help word",
			argv:    []string{"aide", "help"},
			wantCmd: CmdHelp,
		},
		{
			name:    "version word",
			argv:    []string{"aide", "version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "--version flag",
			argv:    []string{"aide", "--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "unknown command defaults to TUI",
			argv:    []string{"aide", "banana"},
			wantCmd: CmdTUI,
			check: func(t *testing.T, a Args) {
				if len(a.Raw) == 0 || a.Raw[0] != "banana" {
					t.Errorf("Raw = %v, want unknown arg preserved", a.Raw)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.argv
			cmd, parsed := Parse()

			if cmd != tt.wantCmd {
				t.Errorf("Parse() command = %v, want %v", cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, parsed)
			}
		})
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkArgParser(b *testing.B) {
	cases := []struct {
		name string
		args []string
	}{
		{"short", []string{"chat_1712", "--format", "json"}},
		{"long", []string{"chat_1712", "--format", "json", "--output", "./exports", "--encrypt", "--no-metadata"}},
	}

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				NewArgParser(bc.args)
			}
		})
	}
}

func BenchmarkDeriveTitle(b *testing.B) {
	question := "Can you explain how the scheduler decides which goroutine runs next on a busy machine?"
	for i := 0; i < b.N; i++ {
		deriveTitle(question)
	}
}
