// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and command dispatch for aide.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Build identifiers, replaced by the real values from main at startup.
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// SetBuildInfo installs the build-time identifiers shown by the version
// command.
func SetBuildInfo(version, commit, date string) {
	Version = version
	GitCommit = commit
	BuildDate = date
}

// Command selects which top-level handler runs.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdChats
	CmdExport
	CmdSearch
	CmdStats
	CmdMemory
	CmdConfig
	CmdVersion
	CmdHelp
)

// commandNames maps the first CLI token (lowercased) to its command,
// including aliases. Tokens not in this map fall through to the TUI.
var commandNames = map[string]Command{
	"tui":       CmdTUI,
	"ask":       CmdAsk,
	"chat":      CmdChat,
	"chats":     CmdChats,
	"list":      CmdChats,
	"ls":        CmdChats,
	"export":    CmdExport,
	"search":    CmdSearch,
	"stats":     CmdStats,
	"memory":    CmdMemory,
	"mem":       CmdMemory,
	"config":    CmdConfig,
	"version":   CmdVersion,
	"--version": CmdVersion,
	"help":      CmdHelp,
	"-h":        CmdHelp,
	"--help":    CmdHelp,
}

// Args carries everything Parse extracted from the command line.
type Args struct {
	// Flags any command accepts
	Quiet   bool
	Verbose bool
	JSON    bool // machine-readable output
	Plain   bool // skip markdown rendering

	// Filled per command
	Query      string
	ChatID     string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw is what's left after flag stripping; export, search and
	// memory reparse it inside their handlers.
	Raw []string
}

const helpText = `aide - terminal client for your AI assistant

Aide talks to a self-hosted assistant backend and keeps your
conversations in sync: a full-screen TUI for everyday use, plus
one-shot and scriptable commands for the terminal.

Usage:
  aide                        Start TUI (default)
  aide ask "question"         Ask a single question
  aide chat                   Interactive chat session
  aide chats                  List conversations
  aide export <chat-id>       Export a conversation to a file
  aide search <term>          Search the local conversation archive
  aide stats                  Usage statistics
  aide memory [subcommand]    Manage assistant memory
  aide config [subcommand]    Configuration
  aide version                Show version information

Ask Command:
  aide ask "question"             Ask in a fresh conversation
    -c, --chat ID                 Continue an existing conversation
    --plain                       Print raw markdown (no rendering)
  echo "question" | aide ask      Read the question from stdin

Chat Command:
  aide chat                       Start a new interactive session
    -c, --chat ID                 Resume an existing conversation

  Interactive commands during chat:
    /chats                        List conversations
    /switch <id>                  Switch to another conversation
    /new                          Start a new conversation
    /history                      Show the current transcript
    /memory                       Show assistant memory
    /quit, /q                     Exit chat
    Ctrl+C                        Cancel the in-flight question
    Ctrl+D                        Exit chat

Export Command:
  aide export <chat-id>           Export a conversation
    --format markdown|json        Output format (default from config)
    --output DIR                  Output directory (default from config)
    --encrypt                     Seal the file with a passphrase

Search Command:
  aide search <term...>           Full-text search of archived exchanges
    --limit N                     Maximum results (default: 50)

  Search works offline: it reads the local archive, never the backend.

Memory Commands:
  aide memory                     Show saved memory entries
  aide memory set <key> <value>   Save a memory entry
  aide memory unset <key>         Remove a memory entry

Config Commands:
  aide config                     Show current configuration
  aide config get <key>           Show a single value
  aide config set <key> <value>   Set a configuration value
  aide config path                Show configuration file location
  aide config reset               Reset to defaults

Global Flags:
  -q, --quiet     Suppress progress notes and stats
  -v, --verbose   Extra diagnostics on stderr
  --json          Machine-readable output (chats, stats, version)

Examples:
  aide                                Start the TUI
  aide ask "What is a goroutine?"     One-shot question
  aide ask -c chat_171543 "And why?"  Follow up in a conversation
  aide chats                          List conversations with previews
  aide export chat_171543 --format json
  aide export chat_171543 --encrypt   Passphrase-protected export
  aide search "rate limiter"          Find old exchanges offline
  aide config set backend.base_url http://odin:8000/api

aide %s
`

// PrintUsage writes the full help text to stdout.
func PrintUsage() { fmt.Printf(helpText, Version) }

// PrintVersion prints build and runtime version details.
func PrintVersion() {
	fmt.Printf("aide version %s\n", Version)
	fmt.Printf("  Git commit: %s\n  Build date: %s\n  Go version: %s\n",
		GitCommit, BuildDate, runtime.Version())
}

// Parse reads os.Args and returns the command to run plus its arguments.
// Global flags may appear anywhere; the first non-flag token selects the
// command. An unrecognized token keeps all args intact and opens the TUI,
// which treats them as a prompt.
func Parse() (Command, Args) {
	rest, parsed := parseGlobalFlags(os.Args[1:])
	if len(rest) == 0 {
		return CmdTUI, parsed
	}

	cmd, ok := commandNames[strings.ToLower(rest[0])]
	if !ok {
		parsed.Raw = rest
		return CmdTUI, parsed
	}
	parsed.Raw = rest[1:]

	if fill, ok := argFillers[cmd]; ok {
		fill(&parsed, parsed.Raw)
	}
	return cmd, parsed
}

// argFillers holds the commands that interpret their args at parse time;
// export, search and memory reparse Raw themselves inside their handlers.
var argFillers = map[Command]func(*Args, []string){
	CmdAsk:    parseAskArgs,
	CmdChat:   parseChatArgs,
	CmdConfig: parseConfigArgs,
}

// parseGlobalFlags strips the global boolean flags out of argv, returning
// whatever is left in order.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var parsed Args
	flags := map[string]*bool{
		"-q": &parsed.Quiet, "--quiet": &parsed.Quiet,
		"-v": &parsed.Verbose, "--verbose": &parsed.Verbose,
		"--json":  &parsed.JSON,
		"--plain": &parsed.Plain,
	}

	kept := make([]string, 0, len(argv))
	for _, arg := range argv {
		if set, ok := flags[arg]; ok {
			*set = true
			continue
		}
		kept = append(kept, arg)
	}
	return kept, parsed
}

// chatIDFlag consumes a -c/--chat flag at position i. It returns the index
// of the last token consumed and whether a chat flag was present.
func chatIDFlag(args *Args, rest []string, i int) (int, bool) {
	switch {
	case rest[i] == "-c" || rest[i] == "--chat":
		if i+1 < len(rest) {
			args.ChatID = rest[i+1]
			return i + 1, true
		}
		return i, true
	case strings.HasPrefix(rest[i], "--chat="):
		args.ChatID = strings.TrimPrefix(rest[i], "--chat=")
		return i, true
	}
	return i, false
}

// parseAskArgs fills ChatID and joins the bare words into the query.
func parseAskArgs(args *Args, rest []string) {
	var words []string
	for i := 0; i < len(rest); i++ {
		if next, ok := chatIDFlag(args, rest, i); ok {
			i = next
			continue
		}
		if !strings.HasPrefix(rest[i], "-") {
			words = append(words, rest[i])
		}
	}
	args.Query = strings.Join(words, " ")
}

// parseChatArgs fills ChatID for resuming a session.
func parseChatArgs(args *Args, rest []string) {
	for i := 0; i < len(rest); i++ {
		if next, ok := chatIDFlag(args, rest, i); ok {
			i = next
		}
	}
}

// parseConfigArgs splits config args into subcommand, key and value.
// The value may span several words ("config set ui.theme warm light").
func parseConfigArgs(args *Args, rest []string) {
	if len(rest) == 0 {
		return
	}
	args.Subcommand = rest[0]
	if len(rest) > 1 {
		args.ConfigKey = rest[1]
	}
	if len(rest) > 2 {
		args.ConfigVal = strings.Join(rest[2:], " ")
	}
}

// =============================================================================
// HANDLER WRAPPERS
// =============================================================================

// run executes a command handler and, on failure, prints the error and
// exits the process with the mapped exit code.
func run(args Args, handler func(Args) error) {
	if err := handler(args); err != nil {
		DisplayError(err, args.JSON)
		os.Exit(ExitCode(err))
	}
}

// HandleAsk runs the one-shot ask command (ask.go).
func HandleAsk(args Args) { run(args, HandleAskCommand) }

// HandleChat runs the interactive chat session (chat.go).
func HandleChat(args Args) { run(args, HandleChatCommand) }

// HandleChats runs the conversation listing (chats_cmd.go).
func HandleChats(args Args) { run(args, HandleChatsCommand) }

// HandleExport runs the conversation export (export_cmd.go).
func HandleExport(args Args) { run(args, HandleExportCommand) }

// HandleSearch runs the offline archive search (search_cmd.go).
func HandleSearch(args Args) { run(args, HandleSearchCommand) }

// HandleStats runs the usage statistics report (stats_cmd.go).
func HandleStats(args Args) { run(args, HandleStatsCommand) }

// HandleMemory runs the memory subcommands (memory_cmd.go).
func HandleMemory(args Args) { run(args, HandleMemoryCommand) }

// HandleConfig runs the config subcommands (config.go).
func HandleConfig(args Args) { run(args, HandleConfigCommand) }

// HandleVersion prints version information, as JSON when requested.
func HandleVersion(args Args) {
	if !args.JSON {
		PrintVersion()
		return
	}
	NewJSONResponse("version", VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}).Print()
}

// HandleHelp prints the usage text.
func HandleHelp() { PrintUsage() }
