// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the aide CLI.
//
// Handles the "aide ask" command which sends one question to the backend
// and prints the reply to stdout.
//
// Command: ask <question>
// Short:   Ask one question and print the reply
//
// Examples:
//   aide ask "What is the capital of France?"
//   aide ask --json "Summarize yesterday's standup"
//   aide ask -c chat_1712345678_ab12 "And what about Spain?"
//   cat error.log | aide ask
//
// Flags:
//   -c, --chat ID    Continue an existing conversation
//   --json           Output response as JSON
//   --plain          Skip markdown rendering
//   -q, --quiet      Minimal output
//
// A question with no --chat flag starts a fresh conversation on the
// backend; the conversation id is printed so the exchange can be
// continued later with "aide chat -c ID".
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/aide-tui/internal/archive"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// REPLY RENDERING
// =============================================================================

// markdownRenderer renders assistant replies for terminal display.
// Nil when glamour could not initialize; output falls back to plain text.
var markdownRenderer = newMarkdownRenderer()

func newMarkdownRenderer() *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return nil
	}
	return r
}

// renderMarkdown renders markdown for terminal display. When the renderer
// is unavailable or fails, the text falls back to width-wrapped plain
// output instead of overflowing the terminal.
func renderMarkdown(md string) string {
	if markdownRenderer != nil {
		if rendered, err := markdownRenderer.Render(md); err == nil {
			return rendered
		}
	}
	return wrapText(md, terminalWidth())
}

// printReply writes a reply to stdout. Markdown rendering is skipped when
// plain output was requested or stdout is not a terminal, so piped
// output stays raw.
func printReply(reply string, plain bool) {
	out := reply
	if !plain && IsStdoutTTY() {
		out = renderMarkdown(reply)
	}
	fmt.Print(out)
}

// =============================================================================
// SUMMARY STYLES
// =============================================================================

var (
	markStyle         = fg(styles.Cyan)          // progress notes on stderr
	separatorStyle    = fg(styles.Overlay)       // summary rule
	summaryLabelStyle = fg(styles.TextSecondary) // summary labels
	summaryValueStyle = fg(styles.Emerald)       // summary values
	errorStyle        = fg(styles.Rose)
)

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// deriveTitle derives a conversation title from the first question.
// Rune-aware so multibyte text is never cut mid-character.
func deriveTitle(firstMessage string) string {
	const maxRunes = 40

	runes := []rune(firstMessage)
	if len(runes) <= maxRunes {
		return firstMessage
	}
	return string(runes[:maxRunes]) + "..."
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// askError reports a failed ask, emitting the JSON envelope first when
// the caller asked for JSON output.
func askError(args Args, err error) error {
	if args.JSON {
		NewJSONErrorResponse("ask", err).Print()
	}
	return err
}

// questionFromStdin reads a piped question. Returns "" when stdin is a
// terminal or empty, so the caller can fall through to the usage error.
func questionFromStdin(args Args) string {
	stat, _ := os.Stdin.Stat()
	if stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil || len(data) == 0 {
		return ""
	}
	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
			markStyle.Render("[+]"), len(data))
	}
	return strings.TrimSpace(string(data))
}

// HandleAskCommand handles the "ask" command: one question, one reply.
func HandleAskCommand(args Args) error {
	q := args.Query
	if q == "" {
		q = questionFromStdin(args)
	}
	if q == "" {
		return askError(args, ErrMissingArgument("question", `aide ask "your question"`))
	}

	client, err := newAPIClient()
	if err != nil {
		return askError(args, err)
	}

	// An explicit --chat continues an existing conversation; otherwise a
	// fresh one is registered on the backend before the exchange.
	ctx := context.Background()
	chatID := args.ChatID
	newChat := chatID == ""
	if newChat {
		chatID = model.NewConversationID()
		if err := client.CreateChat(ctx, chatID, model.DefaultTitle); err != nil {
			return askError(args, WrapError(err, "failed to create conversation"))
		}
	}

	if args.Verbose {
		fmt.Fprintf(os.Stderr, "%s Asking %s (chat %s)\n",
			markStyle.Render("[+]"), client.BaseURL(), chatID)
	}

	// The exchange deliberately has no client-side timeout; a slow model
	// is not an error. Ctrl+C still cancels via the default signal handling.
	started := time.Now()
	userMsg := model.NewMessage(model.RoleUser, q)

	response, err := client.Ask(ctx, chatID, q)
	duration := time.Since(started)
	if err != nil {
		return askError(args, err)
	}

	assistantMsg := model.NewMessage(model.RoleAssistant, response)

	// Derive a title from the first question of a fresh conversation.
	// Propagation failure is reported in verbose mode but never fatal.
	title := model.DefaultTitle
	if newChat {
		title = deriveTitle(q)
		if err := client.CreateChat(ctx, chatID, title); err != nil && args.Verbose {
			fmt.Fprintf(os.Stderr, "%s title propagation failed: %v\n",
				errorStyle.Render("[!]"), err)
		}
	}

	// Mirror the exchange into the local archive when enabled.
	recordAskExchange(config.Global(), chatID, title, userMsg, assistantMsg, args)

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Response:   response,
			ChatID:     chatID,
			Query:      q,
			NewChat:    newChat,
			DurationMs: duration.Milliseconds(),
		}).Print()
	}

	printReply(response, args.Plain)
	fmt.Println()

	if !args.Quiet {
		displayAskSummary(chatID, newChat, duration)
	}

	return nil
}

// recordAskExchange mirrors a completed exchange to the local archive.
// Archive failures never fail the command; the reply already printed.
func recordAskExchange(cfg *config.Config, chatID, title string, user, assistant *model.Message, args Args) {
	if !cfg.Archive.Enabled {
		return
	}

	warn := func(what string, err error) {
		if args.Verbose {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", errorStyle.Render("[!]"), what, err)
		}
	}

	path, err := cfg.ArchivePath()
	if err != nil {
		warn("archive unavailable", err)
		return
	}
	arc, err := archive.Open(path)
	if err != nil {
		warn("archive unavailable", err)
		return
	}
	defer arc.Close()

	if err := arc.RecordExchange(chatID, title, user, assistant); err != nil {
		warn("archive record failed", err)
	}
}

// displayAskSummary shows the exchange summary after the response.
func displayAskSummary(chatID string, newChat bool, duration time.Duration) {
	fmt.Fprintln(os.Stderr, separatorStyle.Render(strings.Repeat("─", 45)))

	fmt.Fprintf(os.Stderr, "%s %s | %s %s\n",
		summaryLabelStyle.Render("Chat:"),
		summaryValueStyle.Render(chatID),
		summaryLabelStyle.Render("Time:"),
		fmtDuration(duration))

	if newChat {
		fmt.Fprintf(os.Stderr, "%s\n",
			DimStyle.Render("Continue with: aide chat -c "+chatID))
	}
}
