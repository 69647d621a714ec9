// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - Conversation listing command for the aide CLI.
//
// CLI: Conversation inventory without entering the TUI
//
// Handles the "aide chats" command which lists conversations on the
// backend, newest first, with previews and relative timestamps.
//
// Command: chats
// Short:   List conversations
// Aliases: list, ls
//
// Examples:
//   aide chats
//   aide chats --json
//   aide chats --json | jq -r '.data.chats[].id'
package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// chatsPreviewRunes caps the preview column in the listing.
const chatsPreviewRunes = 60

// HandleChatsCommand handles the "chats" command.
func HandleChatsCommand(args Args) error {
	client, err := newAPIClient()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("chats", err).Print()
		}
		return err
	}

	summaries, err := client.ListChats(context.Background())
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("chats", err).Print()
		}
		return WrapError(err, "failed to list conversations")
	}

	// Most recently updated first; equal timestamps fall back to id order
	// so the listing is stable across runs.
	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})

	// JSON output mode
	if args.JSON {
		data := ChatListData{
			Chats: make([]ChatEntryData, 0, len(summaries)),
			Count: len(summaries),
		}
		for _, s := range summaries {
			entry := ChatEntryData{
				ID:      s.ID,
				Title:   s.Title,
				Preview: previewFromSummary(s),
			}
			if !s.CreatedAt.IsZero() {
				entry.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
			}
			if !s.UpdatedAt.IsZero() {
				entry.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
			}
			data.Chats = append(data.Chats, entry)
		}
		return NewJSONResponse("chats", data).Print()
	}

	if len(summaries) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet. Start one with: aide ask \"...\""))
		return nil
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Conversations (%d)", len(summaries))))

	now := time.Now()
	for i, s := range summaries {
		fmt.Printf("  %2d. %s  %s\n",
			i+1,
			ValueStyle.Render(s.Title),
			DimStyle.Render(view.RelativeTime(s.UpdatedAt, now)))
		fmt.Printf("      %s\n", DimStyle.Render(s.ID))
		if preview := previewFromSummary(s); preview != "" {
			fmt.Printf("      %s\n", DimStyle.Render("> "+preview))
		}
	}
	fmt.Println()

	return nil
}

// previewFromSummary builds a one-line preview from the backend's cached
// last message. Whitespace runs collapse so multi-line messages stay on
// one row.
func previewFromSummary(s api.ChatSummary) string {
	if s.LastMessage == "" {
		return ""
	}
	return util.TruncateRunes(util.CollapseSpace(s.LastMessage), chatsPreviewRunes)
}
