// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// memory_cmd.go - Assistant memory management for the aide CLI.
//
// CLI: Remembered-fact listing and editing from the terminal
//
// Handles the "aide memory" command which inspects and edits the
// backend's remembered facts about the user. These are the same entries
// the TUI shows on the welcome screen of an empty conversation.
//
// Command: memory [subcommand]
// Short:   Manage assistant memory
// Aliases: mem
//
// Subcommands:
//   (none), show        Show saved memory entries
//   set <key> <value>   Save a memory entry
//   unset <key>         Remove a memory entry
//
// Examples:
//   aide memory
//   aide memory set editor "neovim with gopls"
//   aide memory unset editor
//   aide memory --json
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/jeranaias/aide-tui/internal/api"
)

// HandleMemoryCommand handles the "memory" command.
func HandleMemoryCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	client, err := newAPIClient()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}

	switch parser.Subcommand() {
	case "", "show", "list":
		return showMemory(client, args)
	case "set":
		return setMemory(client, parser, args)
	case "unset", "rm", "delete":
		return unsetMemory(client, parser, args)
	default:
		err := NewValidationErrorWithExample(
			"subcommand",
			parser.Subcommand(),
			"unknown memory subcommand",
			"aide memory [show|set|unset]",
		)
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}
}

// showMemory lists all remembered entries.
func showMemory(client *api.Client, args Args) error {
	memory, err := client.UserMemory(context.Background())
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return WrapError(err, "failed to fetch memory")
	}

	// JSON output mode
	if args.JSON {
		items := make(map[string]string, len(memory))
		for k, v := range memory {
			items[k] = v
		}
		data := MemoryData{Items: items, Count: len(items)}
		return NewJSONResponse("memory", data).Print()
	}

	if len(memory) == 0 {
		fmt.Println(DimStyle.Render("Nothing remembered yet. Add one with: aide memory set <key> <value>"))
		return nil
	}

	keys := make([]string, 0, len(memory))
	for k := range memory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Remembered (%d)", len(keys))))
	for _, k := range keys {
		fmt.Printf("  %s %s\n", RenderLabel(k+":"), ValueStyle.Render(memory[k]))
	}
	fmt.Println()

	return nil
}

// setMemory saves one entry. A missing value is prompted for on a TTY.
func setMemory(client *api.Client, parser *ArgParser, args Args) error {
	key := parser.Positional(1)
	if key == "" {
		err := ErrMissingArgument("key", "aide memory set editor \"neovim\"")
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}

	value := JoinPositionalArgs(parser, 2)
	if value == "" && CanPrompt() && !args.JSON {
		value = promptInput("Value: ")
	}
	if value == "" {
		err := ErrMissingArgument("value", "aide memory set editor \"neovim\"")
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}

	if err := client.SetMemory(context.Background(), key, value); err != nil {
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return WrapError(err, "failed to save memory")
	}

	// JSON output mode
	if args.JSON {
		data := MemoryData{Items: map[string]string{key: value}, Count: 1}
		return NewJSONResponse("memory", data).Print()
	}

	fmt.Printf("%s Remembered %s\n", SuccessStyle.Render("[OK]"), key)
	return nil
}

// unsetMemory removes one entry.
func unsetMemory(client *api.Client, parser *ArgParser, args Args) error {
	key := parser.Positional(1)
	if key == "" {
		err := ErrMissingArgument("key", "aide memory unset editor")
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}

	if err := client.DeleteMemory(context.Background(), key); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			err = NewNotFoundError("memory key", key)
		}
		if args.JSON {
			NewJSONErrorResponse("memory", err).Print()
		}
		return err
	}

	// JSON output mode
	if args.JSON {
		data := MemoryData{Items: map[string]string{}, Count: 0}
		return NewJSONResponse("memory", data).Print()
	}

	fmt.Printf("%s Forgot %s\n", SuccessStyle.Render("[OK]"), key)
	return nil
}
