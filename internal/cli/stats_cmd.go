// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stats_cmd.go - Usage statistics command for the aide CLI.
//
// CLI: Usage reporting across backend and archive sources
//
// Handles the "aide stats" command which reports backend usage totals
// and local archive statistics. Each source degrades independently: a
// dead backend still lets you see archive numbers and vice versa.
//
// Command: stats
// Short:   Usage statistics
// Aliases: (none)
//
// Examples:
//   aide stats
//   aide stats --json
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/aide-tui/internal/archive"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/view"
)

// HandleStatsCommand handles the "stats" command.
func HandleStatsCommand(args Args) error {
	data := StatsData{}

	// Backend totals. Failure is reported but does not hide the archive.
	var backendErr error
	if client, err := newAPIClient(); err != nil {
		backendErr = err
	} else if stats, err := client.Stats(context.Background()); err != nil {
		backendErr = err
	} else {
		data.Backend = &BackendStatsData{
			TotalChats:    stats.TotalChats,
			TotalMessages: stats.TotalMessages,
			MemoryItems:   stats.MemoryItems,
		}
	}

	// Local archive statistics.
	cfg := config.Global()
	dbPath, pathErr := cfg.ArchivePath()
	if _, err := os.Stat(dbPath); pathErr == nil && err == nil {
		if arc, err := archive.Open(dbPath); err == nil {
			if stats, err := arc.Stats(); err == nil {
				entry := &ArchiveStatsData{
					Exchanges: int64(stats.ExchangeCount),
					Chats:     int64(stats.ChatCount),
					SizeBytes: stats.DatabaseSize,
					Path:      dbPath,
				}
				if !stats.OldestRecord.IsZero() {
					entry.OldestRecord = stats.OldestRecord.UTC().Format(time.RFC3339)
				}
				if !stats.NewestRecord.IsZero() {
					entry.NewestRecord = stats.NewestRecord.UTC().Format(time.RFC3339)
				}
				data.Archive = entry
			}
			arc.Close()
		}
	}

	// Nothing reachable at all is an error, not an empty report.
	if data.Backend == nil && data.Archive == nil {
		err := backendErr
		if err == nil {
			err = NewCommandError("stats", "collect", "no backend and no local archive available", nil)
		}
		if args.JSON {
			NewJSONErrorResponse("stats", err).Print()
		}
		return err
	}

	// JSON output mode
	if args.JSON {
		return NewJSONResponse("stats", data).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Usage Statistics"))

	if data.Backend != nil {
		fmt.Println(SectionStyle.Render("Backend"))
		fmt.Printf("  %s %d\n", RenderLabel("Conversations:"), data.Backend.TotalChats)
		fmt.Printf("  %s %d\n", RenderLabel("Messages:"), data.Backend.TotalMessages)
		fmt.Printf("  %s %d\n", RenderLabel("Memory items:"), data.Backend.MemoryItems)
	} else if backendErr != nil {
		fmt.Println(SectionStyle.Render("Backend"))
		fmt.Printf("  %s\n", WarningStyle.Render("unavailable: "+backendErr.Error()))
	}

	if data.Archive != nil {
		fmt.Println(SectionStyle.Render("Local Archive"))
		fmt.Printf("  %s %d\n", RenderLabel("Exchanges:"), data.Archive.Exchanges)
		fmt.Printf("  %s %d\n", RenderLabel("Conversations:"), data.Archive.Chats)
		now := time.Now()
		if data.Archive.OldestRecord != "" {
			if t, err := time.Parse(time.RFC3339, data.Archive.OldestRecord); err == nil {
				fmt.Printf("  %s %s\n", RenderLabel("Oldest:"), view.RelativeTime(t, now))
			}
		}
		if data.Archive.NewestRecord != "" {
			if t, err := time.Parse(time.RFC3339, data.Archive.NewestRecord); err == nil {
				fmt.Printf("  %s %s\n", RenderLabel("Newest:"), view.RelativeTime(t, now))
			}
		}
		fmt.Printf("  %s %s\n", RenderLabel("Size:"), fmtBytes(data.Archive.SizeBytes))
		fmt.Printf("  %s %s\n", RenderLabel("Path:"), DimStyle.Render(data.Archive.Path))
	}

	fmt.Println()
	return nil
}
