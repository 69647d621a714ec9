// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/session"
	"github.com/jeranaias/aide-tui/internal/store"
	"github.com/jeranaias/aide-tui/internal/ui/components"
	"github.com/jeranaias/aide-tui/internal/view"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// testGateway is an in-memory backend double for driving the chat model
// through a real session manager.
type testGateway struct {
	mu sync.Mutex

	chats   []api.ChatSummary
	history map[string][]api.HistoryMessage
	memory  model.Memory
	reply   string

	listErr   error
	createErr error
	askErr    error
	deleteErr error

	historyCalls map[string]int
	askQueries   []string

	// askGate, when non-nil, blocks Ask until the channel is closed so
	// tests can observe the in-flight state.
	askGate chan struct{}
}

func newTestGateway() *testGateway {
	return &testGateway{
		history:      make(map[string][]api.HistoryMessage),
		memory:       model.Memory{},
		reply:        "stub reply",
		historyCalls: make(map[string]int),
	}
}

func (g *testGateway) ListChats(ctx context.Context) ([]api.ChatSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]api.ChatSummary, len(g.chats))
	copy(out, g.chats)
	return out, nil
}

func (g *testGateway) ChatHistory(ctx context.Context, chatID string) ([]api.HistoryMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.historyCalls[chatID]++
	out := make([]api.HistoryMessage, len(g.history[chatID]))
	copy(out, g.history[chatID])
	return out, nil
}

func (g *testGateway) CreateChat(ctx context.Context, chatID, title string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createErr
}

func (g *testGateway) DeleteChat(ctx context.Context, chatID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deleteErr
}

func (g *testGateway) Ask(ctx context.Context, chatID, query string) (string, error) {
	g.mu.Lock()
	g.askQueries = append(g.askQueries, query)
	gate := g.askGate
	err := g.askErr
	reply := g.reply
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (g *testGateway) UserMemory(ctx context.Context) (model.Memory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memory.Clone(), nil
}

func (g *testGateway) historyCallCount(chatID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.historyCalls[chatID]
}

func (g *testGateway) lastQuery() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.askQueries) == 0 {
		return ""
	}
	return g.askQueries[len(g.askQueries)-1]
}

// =============================================================================
// TEST HELPERS
// =============================================================================

func testSummary(id string, updatedAt time.Time) api.ChatSummary {
	return api.ChatSummary{
		ID:        id,
		Title:     "Chat " + id,
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
}

// newTestModel builds a sized, bootstrapped model the way the program
// starts up: bootstrap the session, deliver the terminal size, then the
// bootstrap result.
func newTestModel(t *testing.T, gw *testGateway) Model {
	t.Helper()

	mgr := session.NewManager(store.NewStore(), gw)
	m := New(Options{Session: mgr, Version: "test"})

	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	m = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m = apply(t, m, NewBootstrapDoneMsg(nil))
	drainEvents(m)
	return m
}

// apply runs one Update pass and discards the follow-up command.
func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := applyCmd(t, m, msg)
	return next
}

// applyCmd runs one Update pass and returns the follow-up command.
func applyCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want chat.Model", updated)
	}
	return next, cmd
}

func pressKey(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return applyCmd(t, m, tea.KeyMsg{Type: key})
}

func pressRune(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	return applyCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// drainEvents empties queued session events so a test starts from a
// known-quiet pump.
func drainEvents(m Model) {
	for {
		select {
		case <-m.events:
		default:
			return
		}
	}
}

// collectMsgs executes a command tree depth-first and returns every
// message it yields. Never call it on a command that re-arms the event
// pump unless an event is already queued, because the pump blocks.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, collectMsgs(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func toastMessages(m Model) []string {
	var out []string
	for _, toast := range m.toasts.GetToasts() {
		out = append(out, toast.Message)
	}
	return out
}

func hasToast(m Model, substr string) bool {
	for _, msg := range toastMessages(m) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func waitForState(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// =============================================================================
// EVENT PUMP
// =============================================================================

func TestSessionHooks_PushEventsIntoPump(t *testing.T) {
	gw := newTestGateway()
	mgr := session.NewManager(store.NewStore(), gw)
	m := New(Options{Session: mgr})

	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	// Bootstrap creates a conversation, so at minimum a conversations
	// event must be queued.
	sawConversations := false
	for done := false; !done; {
		select {
		case ev := <-m.events:
			if ev.Kind == SessionEventConversations {
				sawConversations = true
			}
		default:
			done = true
		}
	}
	if !sawConversations {
		t.Error("bootstrap raised no conversations event")
	}
}

func TestSessionHooks_ErrorsArriveAsNotices(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)

	gw.mu.Lock()
	gw.createErr = errors.New("backend down")
	gw.mu.Unlock()

	if _, err := m.session.Create(context.Background()); err == nil {
		t.Fatal("Create succeeded, want error")
	}

	found := false
	for done := false; !done; {
		select {
		case ev := <-m.events:
			if ev.Kind == SessionEventNotice && ev.Notice != "" {
				found = true
			}
		default:
			done = true
		}
	}
	if !found {
		t.Error("failed Create raised no notice event")
	}
}

func TestHandleSessionEvent_NoticeToastsAndRearmsPump(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, cmd := applyCmd(t, m, SessionEventMsg{Kind: SessionEventNotice, Notice: "backend exploded"})
	if !hasToast(m, "backend exploded") {
		t.Errorf("toasts = %v, want the notice text", toastMessages(m))
	}

	// The returned command must deliver the next queued event.
	m.events <- SessionEventMsg{Kind: SessionEventConversations}
	rearmed := false
	for _, msg := range collectMsgs(cmd) {
		if ev, ok := msg.(SessionEventMsg); ok && ev.Kind == SessionEventConversations {
			rearmed = true
		}
	}
	if !rearmed {
		t.Error("handling an event did not re-arm the pump")
	}
}

func TestHandleSessionEvent_SendStateTogglesIndicator(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m = apply(t, m, SessionEventMsg{Kind: SessionEventSendState, Sending: true})
	if !m.sending {
		t.Error("sending flag not set")
	}
	if !m.thinking.IsActive() {
		t.Error("thinking indicator not started")
	}

	m = apply(t, m, SessionEventMsg{Kind: SessionEventSendState, Sending: false})
	if m.sending {
		t.Error("sending flag not cleared")
	}
	if m.thinking.IsActive() {
		t.Error("thinking indicator still active")
	}
}

func TestHandleSessionEvent_TranscriptReprojects(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)

	if err := m.session.Send(context.Background(), "hello there"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	m = apply(t, m, SessionEventMsg{Kind: SessionEventTranscript})
	if m.transcriptState != view.TranscriptMessages {
		t.Errorf("transcriptState = %v, want %v", m.transcriptState, view.TranscriptMessages)
	}
}

func TestHandleSessionEvent_NavCollapseReturnsFocusToInput(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, _ = pressKey(t, m, tea.KeyTab)
	if m.focus != focusList {
		t.Fatal("Tab did not move focus to the list")
	}

	m = apply(t, m, SessionEventMsg{Kind: SessionEventNavCollapse})
	if m.focus != focusInput {
		t.Error("nav collapse did not return focus to the input")
	}
}

// =============================================================================
// CONNECTIVITY
// =============================================================================

func TestConnectivity_NetworkFailureGoesOffline(t *testing.T) {
	m := newTestModel(t, newTestGateway())
	if !m.Connected() {
		t.Fatal("fresh model not connected")
	}

	netErr := &api.RequestError{Op: "list chats", Err: errors.New("dial tcp: refused")}
	m = apply(t, m, NewBootstrapDoneMsg(netErr))
	if m.Connected() {
		t.Error("network failure did not flip the model offline")
	}
	if !hasToast(m, "Failed to load conversations") {
		t.Errorf("toasts = %v, want a bootstrap failure toast", toastMessages(m))
	}
}

func TestConnectivity_ApplicationFailureProvesBackendAlive(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m = apply(t, m, NewBootstrapDoneMsg(&api.RequestError{Op: "list chats", Err: errors.New("refused")}))
	if m.Connected() {
		t.Fatal("network failure did not flip offline")
	}

	// A structured backend error means the backend answered.
	appErr := &api.APIError{Op: "chat history", Status: 500, Message: "boom"}
	m = apply(t, m, NewSwitchDoneMsg("chat_1", appErr))
	if !m.Connected() {
		t.Error("application failure did not flip back online")
	}
	if !hasToast(m, "Failed to load conversation history") {
		t.Errorf("toasts = %v, want a history failure toast", toastMessages(m))
	}
}

func TestConnectivity_UnclassifiedErrorLeavesBadgeAlone(t *testing.T) {
	m := newTestModel(t, newTestGateway())
	m = apply(t, m, NewBootstrapDoneMsg(&api.RequestError{Op: "list chats", Err: errors.New("refused")}))
	if m.Connected() {
		t.Fatal("network failure did not flip offline")
	}

	m = apply(t, m, NewSendDoneMsg(errors.New("message must not be empty")))
	if m.Connected() {
		t.Error("unclassified error must not change connectivity")
	}
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// Failed create, send, delete, and clear results must not toast again:
// the session error hook already did.
func TestOperationResults_FailuresDoNotDoubleToast(t *testing.T) {
	opErr := errors.New("already surfaced by the session hook")
	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{"create", NewCreateDoneMsg("chat_1", opErr)},
		{"send", NewSendDoneMsg(opErr)},
		{"delete", NewDeleteDoneMsg("chat_1", opErr)},
		{"clear all", NewClearAllDoneMsg(opErr)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, newTestGateway())
			m = apply(t, m, tt.msg)
			if got := toastMessages(m); len(got) != 0 {
				t.Errorf("toasts = %v, want none (hook already toasted)", got)
			}
		})
	}
}

func TestOperationResults_SuccessToasts(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"delete", NewDeleteDoneMsg("chat_1", nil), "Conversation deleted"},
		{"clear all", NewClearAllDoneMsg(nil), "All conversations deleted"},
		{"export", NewExportDoneMsg("/tmp/chat.md", nil), "Exported to /tmp/chat.md"},
		{"copy", NewCopyDoneMsg(nil), "Reply copied to clipboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, newTestGateway())
			m = apply(t, m, tt.msg)
			if !hasToast(m, tt.want) {
				t.Errorf("toasts = %v, want %q", toastMessages(m), tt.want)
			}
		})
	}
}

func TestOperationResults_ExportAndCopyFailuresToast(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m = apply(t, m, NewExportDoneMsg("", errors.New("disk full")))
	if !hasToast(m, "Export failed: disk full") {
		t.Errorf("toasts = %v, want the export failure", toastMessages(m))
	}

	m = apply(t, m, NewCopyDoneMsg(errors.New("no clipboard")))
	if !hasToast(m, "Copy failed: no clipboard") {
		t.Errorf("toasts = %v, want the copy failure", toastMessages(m))
	}
}

func TestCreateDone_ReturnsFocusToInput(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, _ = pressKey(t, m, tea.KeyTab)
	if m.focus != focusList {
		t.Fatal("Tab did not move focus to the list")
	}

	m = apply(t, m, NewCreateDoneMsg("chat_new", nil))
	if m.focus != focusInput {
		t.Error("create result did not return focus to the input")
	}
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

func TestSubmitInput_EmptyDoesNothing(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m.input.SetValue("   ")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	if cmd != nil {
		t.Error("blank submit produced a command")
	}
	if got := toastMessages(m); len(got) != 0 {
		t.Errorf("blank submit toasted: %v", got)
	}
}

func TestSubmitInput_SendsTrimmedContent(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)

	m.input.SetValue("  hello  ")
	m, cmd := pressKey(t, m, tea.KeyEnter)

	if got := m.input.Value(); got != "" {
		t.Errorf("input after submit = %q, want cleared", got)
	}

	var done *SendDoneMsg
	for _, msg := range collectMsgs(cmd) {
		if d, ok := msg.(SendDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("submit produced no send result")
	}
	if done.Err != nil {
		t.Fatalf("send failed: %v", done.Err)
	}
	if got := gw.lastQuery(); got != "hello" {
		t.Errorf("backend received %q, want %q", got, "hello")
	}
}

func TestSubmitInput_WhileSendingKeepsDraft(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)

	gw.mu.Lock()
	gw.askGate = make(chan struct{})
	gw.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.session.Send(context.Background(), "first message")
	}()
	waitForState(t, m.session.IsSending, "send never entered flight")

	m.input.SetValue("second draft")
	m, cmd := pressKey(t, m, tea.KeyEnter)

	if cmd != nil {
		t.Error("guarded submit produced a command")
	}
	if got := m.input.Value(); got != "second draft" {
		t.Errorf("draft = %q, want preserved", got)
	}
	if !hasToast(m, "Still waiting for a reply") {
		t.Errorf("toasts = %v, want the busy warning", toastMessages(m))
	}

	close(gw.askGate)
	if err := <-errCh; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
}

func TestSubmitInput_SlashCommandsBypassSendGuard(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)

	gw.mu.Lock()
	gw.askGate = make(chan struct{})
	gw.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.session.Send(context.Background(), "first message")
	}()
	waitForState(t, m.session.IsSending, "send never entered flight")

	m.input.SetValue("/help")
	m, _ = pressKey(t, m, tea.KeyEnter)
	if !m.showHelp {
		t.Error("/help blocked while a send is in flight")
	}

	close(gw.askGate)
	if err := <-errCh; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
}

// =============================================================================
// FOCUS AND NAVIGATION
// =============================================================================

func TestListSelection_SwitchesConversation(t *testing.T) {
	gw := newTestGateway()
	now := time.Now()
	gw.chats = []api.ChatSummary{
		testSummary("chat_a", now),
		testSummary("chat_b", now.Add(-time.Hour)),
	}
	m := newTestModel(t, gw)

	if got := m.session.CurrentID(); got != "chat_a" {
		t.Fatalf("CurrentID = %q, want the most recent chat", got)
	}

	m, _ = pressKey(t, m, tea.KeyTab)
	m, _ = pressKey(t, m, tea.KeyDown)
	m, cmd := pressKey(t, m, tea.KeyEnter)

	if m.focus != focusInput {
		t.Error("selection did not return focus to the input")
	}

	var done *SwitchDoneMsg
	for _, msg := range collectMsgs(cmd) {
		if d, ok := msg.(SwitchDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("selecting another conversation produced no switch")
	}
	if done.ID != "chat_b" || done.Err != nil {
		t.Errorf("switch result = {%q %v}, want chat_b with nil error", done.ID, done.Err)
	}
	if got := m.session.CurrentID(); got != "chat_b" {
		t.Errorf("CurrentID = %q, want %q", got, "chat_b")
	}
	if got := gw.historyCallCount("chat_b"); got != 1 {
		t.Errorf("history fetches for chat_b = %d, want 1", got)
	}
}

func TestListSelection_ActiveConversationIsNoOp(t *testing.T) {
	gw := newTestGateway()
	now := time.Now()
	gw.chats = []api.ChatSummary{
		testSummary("chat_a", now),
		testSummary("chat_b", now.Add(-time.Hour)),
	}
	m := newTestModel(t, gw)

	before := gw.historyCallCount("chat_a")

	m, _ = pressKey(t, m, tea.KeyTab)
	m, cmd := pressKey(t, m, tea.KeyEnter) // cursor starts on the active chat

	if m.focus != focusInput {
		t.Error("selection did not return focus to the input")
	}
	for _, msg := range collectMsgs(cmd) {
		if _, ok := msg.(SwitchDoneMsg); ok {
			t.Fatal("re-selecting the active conversation triggered a switch")
		}
	}
	if got := gw.historyCallCount("chat_a"); got != before {
		t.Errorf("history fetches for chat_a = %d, want unchanged %d", got, before)
	}
}

func TestToggleFocus_NarrowTerminalExplainsItself(t *testing.T) {
	m := newTestModel(t, newTestGateway())
	m = apply(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.sidebarVisible {
		t.Fatal("sidebar still visible below 80 columns")
	}

	m, _ = pressKey(t, m, tea.KeyTab)
	if m.focus != focusInput {
		t.Error("focus moved to a hidden list")
	}
	if !hasToast(m, "Terminal too narrow") {
		t.Errorf("toasts = %v, want the narrow-terminal hint", toastMessages(m))
	}
}

func TestEscape_ClearsToastsBeforeInput(t *testing.T) {
	m := newTestModel(t, newTestGateway())
	m.input.SetValue("draft in progress")
	m.toasts.AddError("something failed")

	m, _ = pressKey(t, m, tea.KeyEsc)
	if m.toasts.HasToasts() {
		t.Error("first Esc did not clear toasts")
	}
	if got := m.input.Value(); got != "draft in progress" {
		t.Errorf("first Esc wiped the draft: %q", got)
	}

	m, _ = pressKey(t, m, tea.KeyEsc)
	if got := m.input.Value(); got != "" {
		t.Errorf("second Esc left the draft: %q", got)
	}
}

func TestEscape_LeavesListFocus(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, _ = pressKey(t, m, tea.KeyTab)
	if m.focus != focusList {
		t.Fatal("Tab did not move focus to the list")
	}

	m, _ = pressKey(t, m, tea.KeyEsc)
	if m.focus != focusInput {
		t.Error("Esc did not return focus to the input")
	}
}

func TestQuit_AlwaysAvailable(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	// Plain workspace.
	_, cmd := pressKey(t, m, tea.KeyCtrlC)
	msgs := collectMsgs(cmd)
	if len(msgs) != 1 {
		t.Fatalf("quit yielded %d messages, want 1", len(msgs))
	}
	if _, ok := msgs[0].(tea.QuitMsg); !ok {
		t.Errorf("quit yielded %T, want tea.QuitMsg", msgs[0])
	}

	// With the confirmation dialog open.
	m, _ = pressKey(t, m, tea.KeyCtrlD)
	if !m.confirm.IsVisible() {
		t.Fatal("Ctrl+D did not open the confirmation")
	}
	_, cmd = pressKey(t, m, tea.KeyCtrlC)
	msgs = collectMsgs(cmd)
	if len(msgs) != 1 {
		t.Fatalf("quit under dialog yielded %d messages, want 1", len(msgs))
	}
	if _, ok := msgs[0].(tea.QuitMsg); !ok {
		t.Errorf("quit under dialog yielded %T, want tea.QuitMsg", msgs[0])
	}
}

func TestHelpOverlay_SwallowsKeysUntilDismissed(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)
	m.showHelp = true

	chatsBefore := m.session.Conversations()
	m, cmd := pressKey(t, m, tea.KeyCtrlN)
	if cmd != nil {
		t.Error("overlay let Ctrl+N through")
	}
	if got := m.session.Conversations(); len(got) != len(chatsBefore) {
		t.Errorf("conversations = %d, want unchanged %d", len(got), len(chatsBefore))
	}

	m, _ = pressKey(t, m, tea.KeyEsc)
	if m.showHelp {
		t.Error("Esc did not dismiss the help overlay")
	}
}

// =============================================================================
// DELETE CONFIRMATION
// =============================================================================

func TestPromptDelete_NoConversations(t *testing.T) {
	gw := newTestGateway()
	gw.listErr = errors.New("backend down")
	gw.createErr = errors.New("backend down")

	mgr := session.NewManager(store.NewStore(), gw)
	m := New(Options{Session: mgr})
	_ = mgr.Bootstrap(context.Background()) // degraded start: nothing current
	m = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	drainEvents(m)

	m, _ = pressKey(t, m, tea.KeyCtrlD)
	if !hasToast(m, "No conversation to delete") {
		t.Errorf("toasts = %v, want the no-target warning", toastMessages(m))
	}
	if m.confirm.IsVisible() {
		t.Error("confirmation opened without a target")
	}
}

func TestShowDeletePrompt_UnknownIDWarns(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m.showDeletePrompt("ghost")
	if !hasToast(m, "No conversation with id ghost") {
		t.Errorf("toasts = %v, want the unknown-id warning", toastMessages(m))
	}
	if m.confirm.IsVisible() {
		t.Error("confirmation opened for an unknown id")
	}
}

func TestDeleteFlow_ConfirmRunsDelete(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)
	targetID := m.session.CurrentID()

	m, _ = pressKey(t, m, tea.KeyCtrlD)
	if !m.confirm.IsVisible() {
		t.Fatal("Ctrl+D did not open the confirmation")
	}

	m, cmd := pressRune(t, m, 'y')
	if m.confirm.IsVisible() {
		t.Error("confirmation still visible after confirming")
	}

	// The dialog answers with a response message; applying it runs the
	// delete against the session.
	var resp *components.ConfirmResponseMsg
	for _, msg := range collectMsgs(cmd) {
		if r, ok := msg.(components.ConfirmResponseMsg); ok {
			resp = &r
		}
	}
	if resp == nil {
		t.Fatal("confirming produced no response message")
	}
	if !resp.Confirmed || resp.TargetID != targetID {
		t.Fatalf("response = %+v, want confirmed delete of %q", resp, targetID)
	}

	m, cmd = applyCmd(t, m, *resp)
	var done *DeleteDoneMsg
	for _, msg := range collectMsgs(cmd) {
		if d, ok := msg.(DeleteDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("confirmed response produced no delete")
	}
	if done.ID != targetID || done.Err != nil {
		t.Errorf("delete result = {%q %v}, want %q with nil error", done.ID, done.Err, targetID)
	}
}

func TestDeleteFlow_DeclineDoesNothing(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)
	before := len(m.session.Conversations())

	m, _ = pressKey(t, m, tea.KeyCtrlD)
	m, cmd := pressRune(t, m, 'n')
	if m.confirm.IsVisible() {
		t.Error("confirmation still visible after declining")
	}

	var resp *components.ConfirmResponseMsg
	for _, msg := range collectMsgs(cmd) {
		if r, ok := msg.(components.ConfirmResponseMsg); ok {
			resp = &r
		}
	}
	if resp == nil {
		t.Fatal("declining produced no response message")
	}
	if resp.Confirmed {
		t.Fatal("declined response marked confirmed")
	}

	m, cmd = applyCmd(t, m, *resp)
	if cmd != nil {
		t.Error("declined response produced a command")
	}
	if got := len(m.session.Conversations()); got != before {
		t.Errorf("conversations = %d, want unchanged %d", got, before)
	}
}

func TestDeleteFlow_EscCancelsDialog(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, _ = pressKey(t, m, tea.KeyCtrlD)
	if !m.confirm.IsVisible() {
		t.Fatal("Ctrl+D did not open the confirmation")
	}

	m, cmd := pressKey(t, m, tea.KeyEsc)
	if m.confirm.IsVisible() {
		t.Error("Esc did not close the confirmation")
	}
	for _, msg := range collectMsgs(cmd) {
		if r, ok := msg.(components.ConfirmResponseMsg); ok && r.Confirmed {
			t.Error("Esc produced a confirmed response")
		}
	}
}

func TestClearAllFlow_ConfirmRunsClearAll(t *testing.T) {
	gw := newTestGateway()
	m := newTestModel(t, gw)
	m.confirm.ShowClearAll(len(m.session.Conversations()))

	m, cmd := pressRune(t, m, 'y')
	var resp *components.ConfirmResponseMsg
	for _, msg := range collectMsgs(cmd) {
		if r, ok := msg.(components.ConfirmResponseMsg); ok {
			resp = &r
		}
	}
	if resp == nil {
		t.Fatal("confirming produced no response message")
	}
	if resp.Action != components.ConfirmClearAll {
		t.Fatalf("response action = %v, want clear-all", resp.Action)
	}

	m, cmd = applyCmd(t, m, *resp)
	var done *ClearAllDoneMsg
	for _, msg := range collectMsgs(cmd) {
		if d, ok := msg.(ClearAllDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("confirmed response produced no clear-all")
	}
	if done.Err != nil {
		t.Fatalf("clear-all failed: %v", done.Err)
	}
	if got := len(m.session.Conversations()); got != 0 {
		t.Errorf("conversations after clear-all = %d, want 0", got)
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestHandleResize_SidebarThreshold(t *testing.T) {
	tests := []struct {
		width   int
		visible bool
	}{
		{79, false},
		{80, true},
		{120, true},
		{40, false},
	}

	for _, tt := range tests {
		m := newTestModel(t, newTestGateway())
		m = apply(t, m, tea.WindowSizeMsg{Width: tt.width, Height: 30})
		if m.sidebarVisible != tt.visible {
			t.Errorf("width %d: sidebarVisible = %v, want %v", tt.width, m.sidebarVisible, tt.visible)
		}
	}
}

func TestHandleResize_HidingSidebarDropsListFocus(t *testing.T) {
	m := newTestModel(t, newTestGateway())

	m, _ = pressKey(t, m, tea.KeyTab)
	if m.focus != focusList {
		t.Fatal("Tab did not move focus to the list")
	}

	m = apply(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.focus != focusInput {
		t.Error("shrinking away the sidebar left focus on the hidden list")
	}
}
