// args.go - Unified argument parsing for aide subcommands.
//
// Commands with subcommands and flags (export, search, memory) share this
// parser instead of each rolling their own flag handling.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strconv"
	"strings"

	"github.com/jeranaias/aide-tui/internal/cmp"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser separates flags from positional arguments. Flags parse in
// any of the usual shapes:
//
//	--flag value     space-separated value
//	--flag=value     equals-joined value
//	-f value         short form
//	--flag           boolean, no value
//	--flag=false     boolean with explicit value
//
// The first positional argument is the subcommand. Flag names are stored
// with leading dashes stripped, and lookups strip them too, so callers
// may ask for either "format" or "--format".
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments.
//
//	args := NewArgParser([]string{"chat_1712", "--format", "json", "--encrypt"})
//	args.Subcommand()        // "chat_1712"
//	args.Flag("format")      // "json"
//	args.BoolFlag("encrypt") // true
func NewArgParser(argv []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if !strings.HasPrefix(tok, "-") {
			p.positional = append(p.positional, tok)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		switch {
		case hasValue && (value == "true" || value == "false"):
			p.boolFlags[name] = value == "true"
		case hasValue:
			p.flags[name] = value
		case i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-"):
			// A bare flag followed by a non-flag takes it as its value.
			p.flags[name] = argv[i+1]
			i++
		default:
			p.boolFlags[name] = true
		}
	}
	return p
}

// Subcommand returns the first positional argument, or "" when there is
// none.
func (p *ArgParser) Subcommand() string { return p.Positional(0) }

// Flag returns a string flag's value, or "" when absent.
func (p *ArgParser) Flag(name string) string { return p.flags[strings.TrimLeft(name, "-")] }

// FlagOrDefault returns the flag value, or def when absent.
func (p *ArgParser) FlagOrDefault(name, def string) string { return cmp.Or(p.Flag(name), def) }

// FlagIntOrDefault returns the flag parsed as an integer, or def when
// the flag is absent or not a number.
func (p *ArgParser) FlagIntOrDefault(name string, def int) int {
	if n, err := strconv.Atoi(p.Flag(name)); err == nil {
		return n
	}
	return def
}

// BoolFlag returns a boolean flag's value, false when absent.
func (p *ArgParser) BoolFlag(name string) bool { return p.boolFlags[strings.TrimLeft(name, "-")] }

// HasFlag reports whether the flag was given in either form.
func (p *ArgParser) HasFlag(name string) bool {
	key := strings.TrimLeft(name, "-")
	_, inStr := p.flags[key]
	_, inBool := p.boolFlags[key]
	return inStr || inBool
}

// Positional returns the positional argument at index i, "" when out of
// range. Index 0 is the subcommand.
func (p *ArgParser) Positional(i int) string {
	if i < 0 || i >= len(p.positional) {
		return ""
	}
	return p.positional[i]
}

// PositionalFrom returns the positional arguments from index i on.
func (p *ArgParser) PositionalFrom(i int) []string {
	if i < 0 || i >= len(p.positional) {
		return nil
	}
	return p.positional[i:]
}

// PositionalCount reports how many positional arguments were given.
func (p *ArgParser) PositionalCount() int { return len(p.positional) }

// JoinPositionalArgs joins positional arguments from startIndex into one
// string, for commands that accept multi-word queries.
func JoinPositionalArgs(p *ArgParser, startIndex int) string {
	return strings.Join(p.PositionalFrom(startIndex), " ")
}
