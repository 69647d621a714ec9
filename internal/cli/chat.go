// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL command for the aide CLI.
//
// Handles "aide chat": a line-oriented conversation loop against the
// backend, for terminals where the full TUI is unwanted or unavailable.
//
// Command: chat
// Short:   Converse with the backend in a terminal REPL
//
// Examples:
//   aide chat                         Open a fresh conversation
//   aide chat -c chat_1712_ab12       Pick up an existing conversation
//   aide chat --quiet                 Suppress banner and exchange stats
//
// Flags:
//   -c, --chat ID    Resume the given conversation
//   -q, --quiet      Minimal output
//
// REPL commands:
//   /help          List commands
//   /new           Open a fresh conversation
//   /chats         List backend conversations
//   /switch ID     Jump to another conversation
//   /history       Print the transcript so far
//   /memory        Print remembered facts
//   /quit          Leave (Ctrl+D also leaves; Ctrl+C cancels an exchange)
//
// The backend learns about a fresh conversation only when the first
// message goes out, so quitting right away leaves nothing behind.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/archive"
	"github.com/jeranaias/aide-tui/internal/config"
	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/util"
	"github.com/jeranaias/aide-tui/internal/view"
)

// =============================================================================
// REPL STYLES
// =============================================================================

// The REPL uses the adaptive TUI palette rather than the ANSI-256 styles
// in styles.go: chat always runs on a real terminal.
var (
	promptStyle        = fg(styles.Cyan).Bold(true)
	welcomeStyle       = fg(styles.Purple).Bold(true)
	infoStyle          = fg(styles.TextSecondary)
	commandStyle       = fg(styles.Emerald)
	warningStyle       = fg(styles.Amber)
	summaryHeaderStyle = fg(styles.Cyan).Bold(true)
)

func fg(c lipgloss.AdaptiveColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// printCLIError reports a failed REPL action without leaving the loop.
func printCLIError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
}

// printSection prints a blank line, a styled heading, and a rule under it.
func printSection(title string, width int) {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render(title))
	fmt.Println(infoStyle.Render(strings.Repeat("─", width)))
}

// =============================================================================
// LINE EDITOR - liner wrapper with persistent input history
// =============================================================================

// lineEditor owns the liner state and the on-disk history file that lets
// arrow-key recall survive restarts.
type lineEditor struct {
	ed       *liner.State
	histPath string
}

// newLineEditor sets up liner with history under the config directory,
// or the system temp directory when that cannot be determined.
func newLineEditor() *lineEditor {
	ed := liner.NewLiner()
	ed.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	le := &lineEditor{ed: ed, histPath: filepath.Join(dir, "chat_history")}
	le.loadHistory()
	return le
}

func (le *lineEditor) loadHistory() {
	f, err := os.Open(le.histPath)
	if err != nil {
		return
	}
	defer f.Close()
	le.ed.ReadHistory(f)
}

// readLine prompts for one line. Non-blank lines become recallable
// through the arrow keys.
func (le *lineEditor) readLine(prompt string) (string, error) {
	line, err := le.ed.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		le.ed.AppendHistory(line)
	}
	return line, err
}

// saveHistory writes history back out with owner-only permissions.
func (le *lineEditor) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(le.histPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	le.ed.WriteHistory(f)
}

func (le *lineEditor) close() {
	le.saveHistory()
	le.ed.Close()
}

// =============================================================================
// REPL SESSION
// =============================================================================

// replSession is the whole mutable state of one "aide chat" run.
type replSession struct {
	client  *api.Client
	archive *archive.Archive // nil when recording is off

	chatID   string
	title    string
	messages []*model.Message

	// created flips once the backend knows about this conversation;
	// fresh conversations register lazily with the first exchange.
	created bool

	exchanges int
	startedAt time.Time
	quiet     bool
	verbose   bool

	// cancelExchange aborts the in-flight request on Ctrl+C.
	cancelExchange context.CancelFunc

	input *lineEditor
}

func newREPLSession(args Args, client *api.Client) *replSession {
	return &replSession{
		client:    client,
		archive:   openSessionArchive(args),
		title:     model.DefaultTitle,
		startedAt: time.Now(),
		quiet:     args.Quiet,
		verbose:   args.Verbose,
		input:     newLineEditor(),
	}
}

// openSessionArchive opens the local archive when enabled. Failures
// degrade to a session without recording; verbose mode says why.
func openSessionArchive(args Args) *archive.Archive {
	cfg := config.Global()
	if !cfg.Archive.Enabled {
		return nil
	}

	path, err := cfg.ArchivePath()
	if err == nil {
		var arc *archive.Archive
		if arc, err = archive.Open(path); err == nil {
			return arc
		}
	}
	if args.Verbose {
		fmt.Fprintf(os.Stderr, "%s archive unavailable: %v\n",
			warningStyle.Render("[!]"), err)
	}
	return nil
}

// close releases the line editor and the archive handle.
func (s *replSession) close() {
	s.input.close()
	if s.archive != nil {
		s.archive.Close()
	}
}

// ensureCreated registers the conversation on the backend the first
// time something actually needs it to exist there.
func (s *replSession) ensureCreated(ctx context.Context) error {
	if s.created {
		return nil
	}
	if s.chatID == "" {
		s.chatID = model.NewConversationID()
	}
	if err := s.client.CreateChat(ctx, s.chatID, s.title); err != nil {
		return WrapError(err, "failed to create conversation")
	}
	s.created = true
	return nil
}

// =============================================================================
// REPL LOOP
// =============================================================================

// HandleChatCommand handles "aide chat": read a line, run it as a slash
// command or an exchange, repeat until the user leaves.
func HandleChatCommand(args Args) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	s := newREPLSession(args, client)
	defer s.close()

	if args.ChatID != "" {
		if err := s.resume(context.Background(), args.ChatID); err != nil {
			return err
		}
	}

	if !s.quiet {
		s.greet()
	}

	// Ctrl+C at the prompt surfaces as liner's ErrPromptAborted; during
	// an exchange it lands here and aborts only the in-flight request.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	go func() {
		for range interrupts {
			if cancel := s.cancelExchange; cancel != nil {
				s.cancelExchange = nil
				cancel()
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		line, err := s.input.readLine(promptStyle.Render("aide> "))
		if err != nil {
			// Ctrl+C or Ctrl+D at the prompt, or a broken terminal:
			// every one of them is a clean way out.
			fmt.Println()
			s.exitSummary()
			return nil
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":

		case strings.HasPrefix(line, "/"):
			keepGoing, err := runSlashCommand(s, line)
			if err != nil {
				printCLIError(err)
			}
			if !keepGoing {
				s.exitSummary()
				return nil
			}

		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			s.exitSummary()
			return nil

		default:
			if err := s.exchange(line); err != nil {
				printCLIError(err)
			}
		}
	}
}

// =============================================================================
// EXCHANGES
// =============================================================================

// exchange runs one round trip: register the conversation if needed,
// send the question, show the reply, mirror it into the archive.
func (s *replSession) exchange(question string) error {
	// Cancellable but not deadlined: a slow reply is not an error.
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelExchange = cancel
	defer func() {
		s.cancelExchange = nil
		cancel()
	}()

	if err := s.ensureCreated(ctx); err != nil {
		return err
	}

	userMsg := model.NewMessage(model.RoleUser, question)
	s.messages = append(s.messages, userMsg)

	began := time.Now()
	fmt.Println() // breathing room before the reply

	reply, err := s.client.Ask(ctx, s.chatID, question)
	if err != nil {
		// The backend kept nothing from the failed round; drop the
		// local user message to match.
		s.messages = s.messages[:len(s.messages)-1]
		return err
	}

	assistantMsg := model.NewMessage(model.RoleAssistant, reply)
	s.messages = append(s.messages, assistantMsg)

	printReply(reply, false)
	fmt.Print("\n\n")

	s.maybeTitle(ctx, question)

	if s.archive != nil {
		if err := s.archive.RecordExchange(s.chatID, s.title, userMsg, assistantMsg); err != nil && s.verbose {
			fmt.Fprintf(os.Stderr, "%s archive record failed: %v\n",
				warningStyle.Render("[!]"), err)
		}
	}

	s.exchanges++
	if !s.quiet {
		fmt.Fprintf(os.Stderr, "%s %s took %s\n", infoStyle.Render("[Stats]"),
			commandStyle.Render(s.title), fmtDuration(time.Since(began)))
	}
	return nil
}

// maybeTitle derives a title from the first exchange of a fresh
// conversation and pushes it to the backend. Failures stay local.
func (s *replSession) maybeTitle(ctx context.Context, question string) {
	if len(s.messages) > 2 || s.title != model.DefaultTitle {
		return
	}
	s.title = deriveTitle(question)
	if err := s.client.CreateChat(ctx, s.chatID, s.title); err != nil && s.verbose {
		fmt.Fprintf(os.Stderr, "%s title propagation failed: %v\n",
			warningStyle.Render("[!]"), err)
	}
}

// resume points the session at an existing backend conversation and
// pulls its title and transcript.
func (s *replSession) resume(ctx context.Context, chatID string) error {
	summaries, err := s.client.ListChats(ctx)
	if err != nil {
		return WrapError(err, "failed to list conversations")
	}

	var found *api.ChatSummary
	for i := range summaries {
		if summaries[i].ID == chatID {
			found = &summaries[i]
			break
		}
	}
	if found == nil {
		return NewNotFoundError("chat", chatID)
	}

	s.chatID = found.ID
	s.title = found.Title
	s.created = true
	s.messages = s.messages[:0]

	// The backend still holds the context even when the transcript fetch
	// fails, so a failure only means starting from a blank screen.
	history, err := s.client.ChatHistory(ctx, chatID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s could not load history: %v\n",
			warningStyle.Render("[!]"), err)
		return nil
	}
	for i := range history {
		h := &history[i]
		s.messages = append(s.messages,
			model.NewMessageAt(model.Role(h.Role), h.Content, h.Timestamp))
	}
	return nil
}

// =============================================================================
// SLASH COMMAND DISPATCH
// =============================================================================

// slashHandler runs one REPL command; keepGoing=false ends the session.
type slashHandler func(s *replSession, args []string) (keepGoing bool, err error)

var slashCommands = map[string]slashHandler{
	"/help": slashHelp, "/h": slashHelp, "/?": slashHelp, "/": slashHelp,
	"/new": slashNew, "/n": slashNew,
	"/chats": slashChats, "/list": slashChats,
	"/switch": slashSwitch, "/sw": slashSwitch,
	"/history": slashHistory,
	"/memory":  slashMemory, "/mem": slashMemory,
	"/quit": slashQuit, "/q": slashQuit, "/exit": slashQuit,
}

// runSlashCommand splits the line and dispatches on the first word.
func runSlashCommand(s *replSession, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true, nil
	}
	handler, ok := slashCommands[strings.ToLower(fields[0])]
	if !ok {
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", fields[0])
	}
	return handler(s, fields[1:])
}

func slashHelp(*replSession, []string) (bool, error) {
	printSlashHelp()
	return true, nil
}

func slashNew(s *replSession, _ []string) (bool, error) {
	s.chatID = ""
	s.title = model.DefaultTitle
	s.messages = s.messages[:0]
	s.created = false
	fmt.Println(commandStyle.Render("[Started a new conversation]"))
	return true, nil
}

func slashChats(s *replSession, _ []string) (bool, error) {
	return true, s.listChats()
}

func slashSwitch(s *replSession, argv []string) (bool, error) {
	if len(argv) == 0 {
		return true, fmt.Errorf("usage: /switch ID (see /chats for ids)")
	}

	target := argv[0]
	if s.created && target == s.chatID {
		fmt.Println(infoStyle.Render("[Already in this conversation]"))
		return true, nil
	}
	if err := s.resume(context.Background(), target); err != nil {
		return true, err
	}

	fmt.Printf("%s Switched to: %s (%d messages)\n",
		commandStyle.Render("[OK]"), s.title, len(s.messages))
	return true, nil
}

func slashHistory(s *replSession, _ []string) (bool, error) {
	s.showTranscript()
	return true, nil
}

func slashMemory(s *replSession, _ []string) (bool, error) {
	return true, s.showMemory()
}

func slashQuit(*replSession, []string) (bool, error) {
	return false, nil
}

// =============================================================================
// TRANSCRIPT AND SUMMARY OUTPUT
// =============================================================================

// greet prints the banner: where we are connected and what we resumed.
func (s *replSession) greet() {
	chat := "new conversation"
	if s.created {
		chat = fmt.Sprintf("%s (%d messages)", s.title, len(s.messages))
	}

	rows := [][2]string{
		{"Backend:", s.client.BaseURL()},
		{"Chat:", chat},
	}
	if s.archive != nil {
		rows = append(rows, [2]string{"Archive:", "recording"})
	}

	fmt.Println()
	fmt.Println(welcomeStyle.Render("aide interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	for _, r := range rows {
		fmt.Printf("%s %s\n", infoStyle.Render(r[0]), commandStyle.Render(r[1]))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type a message and press Enter. /help lists commands."))
	fmt.Println()
}

// printSlashHelp lists the REPL commands.
func printSlashHelp() {
	rows := [][2]string{
		{"/help, /h", "List these commands"},
		{"/new, /n", "Open a fresh conversation"},
		{"/chats", "List conversations on the backend"},
		{"/switch ID", "Jump to another conversation"},
		{"/history", "Print the transcript so far"},
		{"/memory", "Print remembered facts"},
		{"/quit, /q", "Leave the session"},
	}

	printSection("REPL Commands", 20)
	fmt.Println()
	for _, r := range rows {
		fmt.Printf("  %s  %s\n", commandStyle.Render(fmt.Sprintf("%-15s", r[0])), infoStyle.Render(r[1]))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current exchange, Ctrl+D exits"))
	fmt.Println()
}

// listChats prints the backend's conversations, newest first.
func (s *replSession) listChats() error {
	summaries, err := s.client.ListChats(context.Background())
	if err != nil {
		return WrapError(err, "failed to list conversations")
	}
	if len(summaries) == 0 {
		fmt.Println(infoStyle.Render("[No conversations yet]"))
		return nil
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	printSection("Conversations", 20)
	fmt.Println()

	now := time.Now()
	for i, sum := range summaries {
		marker := "  "
		if s.created && sum.ID == s.chatID {
			marker = commandStyle.Render("> ")
		}
		fmt.Printf("%s%d. %s  %s\n", marker, i+1, sum.Title,
			DimStyle.Render(view.RelativeTime(sum.UpdatedAt, now)))
		fmt.Printf("     %s\n", DimStyle.Render(sum.ID))
	}

	fmt.Println()
	return nil
}

// showMemory prints what the backend remembers about the user.
func (s *replSession) showMemory() error {
	memory, err := s.client.UserMemory(context.Background())
	if err != nil {
		return WrapError(err, "failed to fetch memory")
	}
	if len(memory) == 0 {
		fmt.Println(infoStyle.Render("[Nothing remembered yet]"))
		return nil
	}

	keys := make([]string, 0, len(memory))
	for k := range memory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	printSection("Remembered", 20)
	fmt.Println()
	for _, k := range keys {
		fmt.Printf("  %s %s\n", infoStyle.Render(k+":"), memory[k])
	}
	fmt.Println()
	return nil
}

var roleTints = map[model.Role]lipgloss.Style{
	model.RoleUser:      fg(styles.Cyan),
	model.RoleAssistant: fg(styles.Purple),
}

// showTranscript prints the transcript, one clipped line per message.
func (s *replSession) showTranscript() {
	if len(s.messages) == 0 {
		fmt.Println(infoStyle.Render("[Empty transcript]"))
		return
	}

	printSection("Conversation History", 25)
	fmt.Println()

	for i, msg := range s.messages {
		role := msg.Role.DisplayName()
		if tint, ok := roleTints[msg.Role]; ok {
			role = tint.Render(role)
		}
		clipped := util.TruncateRunes(util.CollapseSpace(msg.Content), 100)
		fmt.Printf("  %d. %s: %s\n", i+1, role, clipped)
	}

	fmt.Println()
}

// exitSummary prints the parting stats; a session that never exchanged
// anything just says goodbye.
func (s *replSession) exitSummary() {
	if s.exchanges == 0 {
		fmt.Println(infoStyle.Render("Bye!"))
		return
	}

	printSection("Session Summary", 15)
	rows := [][2]string{
		{"Exchanges:", fmt.Sprintf("%d", s.exchanges)},
		{"Messages:", fmt.Sprintf("%d", len(s.messages))},
		{"Elapsed:", time.Since(s.startedAt).Round(time.Second).String()},
	}
	for _, r := range rows {
		fmt.Printf("  %s %s\n", infoStyle.Render(r[0]), r[1])
	}

	if s.created {
		fmt.Println()
		fmt.Println(DimStyle.Render("Resume with: aide chat -c " + s.chatID))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Bye!"))
}
