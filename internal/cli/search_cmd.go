// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// search_cmd.go - Offline archive search command for the aide CLI.
//
// CLI: Archive queries that work without a backend
//
// Handles the "aide search" command which runs full-text search over the
// local exchange archive. Search never talks to the backend, so it works
// on a disconnected machine.
//
// Command: search <term...>
// Short:   Search the local conversation archive
// Aliases: (none)
//
// Examples:
//   aide search rate limiter
//   aide search "context cancellation" --limit 10
//   aide search goroutine --json
//
// Flags:
//   --limit N    Maximum results (default: 50)
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/aide-tui/internal/archive"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// searchSnippetRunes caps the question/answer snippets in search output.
const searchSnippetRunes = 100

// HandleSearchCommand handles the "search" command.
func HandleSearchCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	term := JoinPositionalArgs(parser, 0)
	if term == "" {
		err := ErrMissingArgument("term", `aide search "rate limiter"`)
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
		}
		return err
	}

	limit := parser.FlagIntOrDefault("limit", archive.DefaultSearchLimit)
	if limit <= 0 {
		err := NewValidationError("limit", parser.Flag("limit"), "must be a positive integer")
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
		}
		return err
	}

	cfg := config.Global()
	dbPath, err := cfg.ArchivePath()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
		}
		return NewCommandError("search", "open", "could not resolve archive path", err)
	}

	// A missing database means nothing has ever been recorded; opening it
	// would just create an empty one.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		err := NewCommandError("search", "open", "no archive database found", nil)
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
			return err
		}
		fmt.Fprintln(os.Stderr, DimStyle.Render("Nothing archived yet."))
		if !cfg.Archive.Enabled {
			fmt.Fprintln(os.Stderr, DimStyle.Render("Enable recording with: aide config set archive.enabled true"))
		}
		return err
	}

	arc, err := archive.Open(dbPath)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
		}
		return NewCommandError("search", "open", "could not open archive", err)
	}
	defer arc.Close()

	results, err := arc.Search(term, limit)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("search", err).Print()
		}
		return NewCommandError("search", "query", "search failed", err)
	}

	// JSON output mode
	if args.JSON {
		data := SearchData{
			Term:    term,
			Results: make([]SearchHitData, 0, len(results)),
			Count:   len(results),
		}
		for _, r := range results {
			data.Results = append(data.Results, SearchHitData{
				ChatID:   r.ChatID,
				Title:    r.Title,
				Question: r.UserMessage,
				Answer:   r.AssistantMessage,
				AskedAt:  r.AskedAt.UTC().Format(time.RFC3339),
				Rank:     r.Rank,
			})
		}
		return NewJSONResponse("search", data).Print()
	}

	if len(results) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("No matches for %q.", term)))
		return nil
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("%d match(es) for %q", len(results), term)))

	now := time.Now()
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.ChatID
		}
		fmt.Printf("  %2d. %s  %s\n",
			i+1,
			ValueStyle.Render(title),
			DimStyle.Render(view.RelativeTime(r.AskedAt, now)))
		fmt.Printf("      %s %s\n",
			HighlightStyle.Render("Q:"),
			searchSnippet(r.UserMessage))
		fmt.Printf("      %s %s\n",
			InfoStyle.Render("A:"),
			searchSnippet(r.AssistantMessage))
		fmt.Printf("      %s\n", DimStyle.Render(r.ChatID))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Resume a conversation with: aide chat -c <id>"))

	return nil
}

// searchSnippet flattens a message into a single bounded line.
func searchSnippet(s string) string {
	s = strings.TrimSpace(s)
	return util.TruncateRunes(util.CollapseSpace(s), searchSnippetRunes)
}
