// aide - terminal client for a self-hosted assistant backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/archive"
	"github.com/jeranaias/aide-tui/internal/cli"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/session"
	"github.com/jeranaias/aide-tui/internal/store"
	"github.com/jeranaias/aide-tui/internal/ui/chat"
)

// Build identifiers, injected with -ldflags "-X main.Version=..." and
// friends. Defaults cover plain `go build`.
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() { cli.SetBuildInfo(Version, GitCommit, BuildDate) }

// dispatch maps each parsed command to its handler.
var dispatch = map[cli.Command]func(cli.Args){
	cli.CmdTUI:     runTUI,
	cli.CmdAsk:     cli.HandleAsk,
	cli.CmdChat:    cli.HandleChat,
	cli.CmdChats:   cli.HandleChats,
	cli.CmdExport:  cli.HandleExport,
	cli.CmdSearch:  cli.HandleSearch,
	cli.CmdStats:   cli.HandleStats,
	cli.CmdMemory:  cli.HandleMemory,
	cli.CmdConfig:  cli.HandleConfig,
	cli.CmdVersion: cli.HandleVersion,
	cli.CmdHelp:    func(cli.Args) { cli.HandleHelp() },
}

func main() {
	cmd, args := cli.Parse()

	handler, ok := dispatch[cmd]
	if !ok {
		cli.PrintUsage()
		os.Exit(1)
	}
	handler(args)
}

// =============================================================================
// TUI STARTUP
// =============================================================================

// runTUI wires the full pipeline and runs the Bubble Tea program:
// configuration, debug logger, HTTP gateway, in-memory store, session
// manager with the optional archive recorder, and the chat model on top.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg, args.Verbose)
	defer closeLog()

	client := api.NewClient(cfg.Backend.BaseURL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RequestsPerSec, cfg.Backend.Burst).
		WithLogger(logger)

	mgr := session.NewManager(store.NewStore(), client).WithLogger(logger)
	if rec := openArchive(cfg, logger); rec != nil {
		mgr.WithRecorder(rec)
		defer rec.Close()
	}

	m := chat.New(chat.Options{
		Session:      mgr,
		Exporter:     client,
		Version:      Version,
		ExportFormat: cfg.Export.Format,
		ExportDir:    cfg.Export.Dir,
		SidebarWidth: cfg.UI.SidebarWidth,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	closeWatch := watchConfig(p, logger)
	defer closeWatch()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "aide:", err)
		os.Exit(1)
	}
}

// openArchive opens the local archive mirror when enabled. A broken
// archive must not keep the client from starting, so failures log and
// return nil.
func openArchive(cfg *config.Config, logger *log.Logger) *archive.Archive {
	if !cfg.Archive.Enabled {
		return nil
	}
	path, err := cfg.ArchivePath()
	if err != nil {
		logger.Printf("archive disabled: %v", err)
		return nil
	}
	rec, err := archive.Open(path)
	if err != nil {
		logger.Printf("archive disabled: %v", err)
		return nil
	}
	return rec
}

// watchConfig picks up config edits made while the TUI is running and
// returns a closer. Watch failures leave the program running without
// live reload.
func watchConfig(p *tea.Program, logger *log.Logger) func() {
	w, err := config.NewWatcher(func(*config.Config) { p.Send(chat.ConfigReloadedMsg{}) })
	if err != nil {
		logger.Printf("config watch unavailable: %v", err)
		return func() {}
	}
	w.WithErrorHandler(func(err error) { logger.Printf("config watch: %v", err) })
	if err := w.Watch(); err != nil {
		logger.Printf("config watch: %v", err)
	}
	return func() { w.Close() }
}

// newLogger builds the debug logger. The TUI owns stdout and stderr, so
// diagnostics go to the configured log file or nowhere at all.
func newLogger(cfg *config.Config, verbose bool) (*log.Logger, func()) {
	discard := func() (*log.Logger, func()) {
		return log.New(io.Discard, "", 0), func() {}
	}

	if !cfg.Log.Debug && !verbose {
		return discard()
	}

	path, err := cfg.LogPath()
	if err != nil {
		return discard()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return discard()
	}
	return log.New(f, "aide ", log.LstdFlags), func() { f.Close() }
}
