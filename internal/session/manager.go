// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates conversation state between the aide backend
// and the local store.
package session

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/store"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Gateway is the backend surface the manager drives. *api.Client satisfies
// it; tests substitute doubles.
type Gateway interface {
	ListChats(ctx context.Context) ([]api.ChatSummary, error)
	ChatHistory(ctx context.Context, chatID string) ([]api.HistoryMessage, error)
	CreateChat(ctx context.Context, chatID, title string) error
	DeleteChat(ctx context.Context, chatID string) error
	Ask(ctx context.Context, chatID, query string) (string, error)
	UserMemory(ctx context.Context) (model.Memory, error)
}

// Recorder mirrors completed exchanges into local storage. Recording is
// best-effort: a recorder failure never disturbs conversation state.
type Recorder interface {
	RecordExchange(chatID, title string, user, assistant *model.Message) error
}

// Hooks are the presentation callbacks the manager fires as state changes.
// Any field may be nil. Hooks are always invoked outside the manager's
// lock, so a hook may call back into the manager safely.
type Hooks struct {
	// OnConversationsChanged fires when the sidebar needs re-rendering:
	// membership, ordering, titles, or the active selection changed.
	OnConversationsChanged func()

	// OnTranscriptChanged fires when the current transcript needs
	// re-rendering.
	OnTranscriptChanged func()

	// OnSendStateChanged fires when the in-flight send flag flips, driving
	// the pending indicator and input gating.
	OnSendStateChanged func(sending bool)

	// OnError fires with a short user-facing message for failed commands.
	// The presentation layer shows it as an auto-dismissing notice.
	OnError func(msg string)

	// OnNavCollapse fires after a switch completes, so narrow layouts can
	// collapse the conversation list back out of the way.
	OnNavCollapse func()
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage is returned when a send is attempted with nothing
	// but whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned when a send is attempted while another
	// send has not finished yet.
	ErrSendInFlight = errors.New("a send is already in flight")

	// ErrNoConversation is returned when a send is attempted with no
	// conversation selected.
	ErrNoConversation = errors.New("no conversation selected")
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

const (
	// titleMaxRunes caps a derived conversation title before the ellipsis
	// marker is appended.
	titleMaxRunes = 40

	// titleEllipsis marks a truncated derived title.
	titleEllipsis = "..."
)

// syntheticErrorReply is appended as an assistant turn when an exchange
// fails, so the user's message is answered rather than silently dropped.
const syntheticErrorReply = "Sorry, I encountered an error processing your message. Please try again."

// historyFlight tracks one in-flight history fetch so concurrent requests
// for the same conversation share a single outcome.
type historyFlight struct {
	done chan struct{}
	err  error
}

// Manager owns the conversation lifecycle: bootstrapping from the backend,
// switching, creating, deleting, and running message exchanges. All writes
// to the store funnel through it.
//
// Methods are safe for concurrent use. The lock is never held across a
// network call; every continuation re-validates that its target
// conversation still exists before writing, since the conversation may
// have been deleted during the round-trip.
type Manager struct {
	mu sync.Mutex

	store    *store.Store
	gateway  Gateway
	hooks    Hooks
	recorder Recorder
	logger   *log.Logger

	currentID string
	memory    model.Memory
	sending   bool

	historyLoads map[string]*historyFlight
}

// NewManager creates a manager over the given store and gateway.
func NewManager(st *store.Store, gw Gateway) *Manager {
	return &Manager{
		store:        st,
		gateway:      gw,
		logger:       log.New(io.Discard, "", 0),
		memory:       model.Memory{},
		historyLoads: make(map[string]*historyFlight),
	}
}

// WithHooks sets the presentation callbacks.
func (m *Manager) WithHooks(hooks Hooks) *Manager {
	m.hooks = hooks
	return m
}

// WithRecorder sets the local exchange recorder.
func (m *Manager) WithRecorder(rec Recorder) *Manager {
	m.recorder = rec
	return m
}

// WithLogger sets the diagnostic logger.
func (m *Manager) WithLogger(logger *log.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// CurrentID returns the id of the selected conversation, or "" if none.
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}

// Current returns a snapshot of the selected conversation.
func (m *Manager) Current() (*model.Conversation, bool) {
	m.mu.Lock()
	id := m.currentID
	m.mu.Unlock()

	if id == "" {
		return nil, false
	}
	conv, err := m.store.Get(id)
	if err != nil {
		return nil, false
	}
	return conv, true
}

// Conversations returns a snapshot of all conversations, most recently
// updated first.
func (m *Manager) Conversations() []*model.Conversation {
	return m.store.List()
}

// Memory returns a copy of the user's remembered facts.
func (m *Manager) Memory() model.Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memory.Clone()
}

// IsSending reports whether an exchange is in flight.
func (m *Manager) IsSending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// Bootstrap brings the manager to a renderable state: fetch user memory
// (best-effort), fetch the conversation listing, then select the most
// recently updated conversation and load its history so the first paint
// shows transcript content rather than a loading flash.
//
// An empty or failed listing falls back to creating a single fresh
// conversation. A failed history fetch leaves the selection in place with
// the transcript in its not-loaded state. Only the fallback create can
// return an error; nothing here is fatal to the caller.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.refreshMemory(ctx)

	summaries, err := m.gateway.ListChats(ctx)
	if err != nil {
		m.logger.Printf("session: conversation listing failed: %v", err)
	}
	if err != nil || len(summaries) == 0 {
		_, cerr := m.Create(ctx)
		return cerr
	}

	m.mu.Lock()
	for i := range summaries {
		m.store.Upsert(conversationFromSummary(&summaries[i]))
	}
	top, _ := m.store.MostRecent()
	m.currentID = top.ID
	m.mu.Unlock()

	if lerr := m.ensureHistory(ctx, top.ID); lerr != nil {
		m.logger.Printf("session: bootstrap history load failed for %s: %v", top.ID, lerr)
	}

	m.notifyConversations()
	m.notifyTranscript()
	return nil
}

// conversationFromSummary hydrates a conversation from one listing entry.
// History stays not-loaded until fetched on demand.
func conversationFromSummary(s *api.ChatSummary) *model.Conversation {
	return &model.Conversation{
		ID:          s.ID,
		Title:       s.Title,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		LastMessage: s.LastMessage,
		History:     model.HistoryNotLoaded,
	}
}

// refreshMemory re-fetches user memory, keeping the prior value on
// failure. Reads degrade; they never surface errors.
func (m *Manager) refreshMemory(ctx context.Context) {
	mem, err := m.gateway.UserMemory(ctx)
	if err != nil {
		m.logger.Printf("session: user memory unavailable: %v", err)
		return
	}

	m.mu.Lock()
	m.memory = mem
	m.mu.Unlock()
}

// =============================================================================
// HISTORY LOADING
// =============================================================================

// LoadHistory fetches message history for a conversation unless a fetch
// already completed. Concurrent calls for the same id share one request
// and one outcome. Returns store.ErrNotFound if the conversation is
// unknown or was deleted while the fetch was in flight.
func (m *Manager) LoadHistory(ctx context.Context, id string) error {
	return m.ensureHistory(ctx, id)
}

func (m *Manager) ensureHistory(ctx context.Context, id string) error {
	m.mu.Lock()
	conv, err := m.store.Get(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if conv.History.Fetched() {
		m.mu.Unlock()
		return nil
	}
	if flight, ok := m.historyLoads[id]; ok {
		m.mu.Unlock()
		select {
		case <-flight.done:
			return flight.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	flight := &historyFlight{done: make(chan struct{})}
	m.historyLoads[id] = flight
	m.mu.Unlock()

	history, ferr := m.gateway.ChatHistory(ctx, id)

	m.mu.Lock()
	delete(m.historyLoads, id)
	switch {
	case ferr != nil:
		flight.err = ferr
	case !m.store.Contains(id):
		// Deleted during the round-trip: the late result is discarded.
		flight.err = store.ErrNotFound
	default:
		msgs := make([]*model.Message, 0, len(history))
		for i := range history {
			msgs = append(msgs, messageFromHistory(&history[i]))
		}
		state := model.HistoryLoaded
		if len(msgs) == 0 {
			state = model.HistoryLoadedEmpty
		}
		flight.err = m.store.SetHistory(id, msgs, state)
	}
	m.mu.Unlock()

	close(flight.done)
	return flight.err
}

// messageFromHistory converts one backend history entry into a message.
func messageFromHistory(h *api.HistoryMessage) *model.Message {
	return model.NewMessageAt(model.Role(h.Role), h.Content, h.Timestamp)
}

// =============================================================================
// SWITCH
// =============================================================================

// Switch makes a conversation current. Switching to the conversation that
// is already current is a strict no-op: no fetch, no re-render. Otherwise
// the history is lazily loaded (skipped when already fetched), the
// selection moves, and the presentation hooks fire, including the
// navigation-collapse trigger for narrow layouts.
//
// A failed history fetch does not block the switch; the transcript simply
// renders its loading state. Switching to an id deleted mid-fetch returns
// store.ErrNotFound and leaves the selection unchanged.
func (m *Manager) Switch(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.currentID == id {
		m.mu.Unlock()
		return nil
	}
	if !m.store.Contains(id) {
		m.mu.Unlock()
		return store.ErrNotFound
	}
	m.mu.Unlock()

	if err := m.ensureHistory(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		m.logger.Printf("session: history load failed for %s: %v", id, err)
	}

	m.mu.Lock()
	if !m.store.Contains(id) {
		m.mu.Unlock()
		return store.ErrNotFound
	}
	m.currentID = id
	m.mu.Unlock()

	m.notifyConversations()
	m.notifyTranscript()
	m.notifyNavCollapse()
	return nil
}

// =============================================================================
// CREATE
// =============================================================================

// Create makes a fresh conversation on the backend and, once confirmed,
// inserts it locally and selects it. There is no optimistic insert: a
// failed create leaves the store untouched and surfaces an error notice.
func (m *Manager) Create(ctx context.Context) (*model.Conversation, error) {
	id := model.NewConversationID()
	for m.store.Contains(id) {
		id = model.NewConversationID()
	}

	if err := m.gateway.CreateChat(ctx, id, model.DefaultTitle); err != nil {
		m.logger.Printf("session: create failed: %v", err)
		m.notifyError("Failed to create a new chat")
		return nil, err
	}

	now := time.Now()
	conv := &model.Conversation{
		ID:        id,
		Title:     model.DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		History:   model.HistoryLoadedEmpty,
	}

	m.mu.Lock()
	m.store.Upsert(conv)
	m.currentID = id
	m.mu.Unlock()

	m.notifyConversations()
	m.notifyTranscript()
	return conv, nil
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one message exchange against the current conversation:
// append the user's turn immediately, issue the ask, then append either
// the assistant's reply or a synthetic error reply. Exactly one send may
// be in flight at a time across all conversations; a second attempt is
// rejected without touching the store.
//
// After a successful first exchange the conversation title is derived
// from the user's message and propagated to the backend; a propagation
// failure keeps the local title and is only logged. User memory also
// refreshes after each successful exchange.
//
// The ask call carries no client-side timeout beyond ctx: a hung exchange
// stalls only the pending indicator, never the rest of the client.
func (m *Manager) Send(ctx context.Context, text string) error {
	query := norm.NFC.String(strings.TrimSpace(text))
	if query == "" {
		return ErrEmptyMessage
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return ErrSendInFlight
	}
	id := m.currentID
	if id == "" {
		m.mu.Unlock()
		return ErrNoConversation
	}
	userMsg := model.NewMessage(model.RoleUser, query)
	if err := m.store.AppendMessage(id, userMsg); err != nil {
		m.mu.Unlock()
		return err
	}
	m.sending = true
	m.mu.Unlock()

	m.notifySendState(true)
	m.notifyTranscript()
	m.notifyConversations()

	reply, askErr := m.gateway.Ask(ctx, id, query)

	m.mu.Lock()
	if !m.store.Contains(id) {
		// Deleted while the exchange was in flight: drop the result.
		m.sending = false
		m.mu.Unlock()
		m.notifySendState(false)
		return store.ErrNotFound
	}
	if askErr != nil {
		m.store.AppendMessage(id, model.NewMessage(model.RoleAssistant, syntheticErrorReply))
		m.sending = false
		m.mu.Unlock()

		m.logger.Printf("session: exchange failed for %s: %v", id, askErr)
		m.notifySendState(false)
		m.notifyTranscript()
		m.notifyConversations()
		m.notifyError("Message failed to send")
		return askErr
	}

	assistantMsg := model.NewMessage(model.RoleAssistant, reply)
	m.store.AppendMessage(id, assistantMsg)
	count := 0
	if conv, err := m.store.Get(id); err == nil {
		count = conv.MessageCount()
	}
	m.mu.Unlock()

	if count <= 2 {
		m.deriveTitle(ctx, id, query)
	}
	m.refreshMemory(ctx)
	m.recordExchange(id, userMsg, assistantMsg)

	m.mu.Lock()
	m.sending = false
	m.mu.Unlock()

	m.notifySendState(false)
	m.notifyTranscript()
	m.notifyConversations()
	return nil
}

// deriveTitle sets the conversation title from the first user message and
// propagates it to the backend. The local title applies even when
// propagation fails; that failure is logged, never surfaced.
func (m *Manager) deriveTitle(ctx context.Context, id, firstMessage string) {
	title := firstMessage
	if runes := []rune(title); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + titleEllipsis
	}

	if err := m.store.SetTitle(id, title); err != nil {
		return
	}
	if err := m.gateway.CreateChat(ctx, id, title); err != nil {
		m.logger.Printf("session: title propagation failed for %s: %v", id, err)
	}
}

// recordExchange mirrors a completed exchange to the local recorder.
func (m *Manager) recordExchange(id string, user, assistant *model.Message) {
	if m.recorder == nil {
		return
	}
	title := ""
	if conv, err := m.store.Get(id); err == nil {
		title = conv.Title
	}
	if err := m.recorder.RecordExchange(id, title, user, assistant); err != nil {
		m.logger.Printf("session: exchange recording failed for %s: %v", id, err)
	}
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a conversation, remote first: the local copy goes away
// only after the backend confirms. Callers are responsible for having
// confirmed the action with the user.
//
// Deleting the current conversation selects the most recently updated
// remaining one and loads its history; deleting the last conversation
// falls back to creating a fresh one, the same path bootstrap takes on an
// empty listing.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.gateway.DeleteChat(ctx, id); err != nil {
		m.logger.Printf("session: delete failed for %s: %v", id, err)
		m.notifyError("Failed to delete chat")
		return err
	}

	m.mu.Lock()
	m.store.Remove(id)
	wasCurrent := m.currentID == id
	nextID := ""
	if wasCurrent {
		m.currentID = ""
		if next, ok := m.store.MostRecent(); ok {
			nextID = next.ID
			m.currentID = nextID
		}
	}
	m.mu.Unlock()

	m.notifyConversations()
	if !wasCurrent {
		return nil
	}

	if nextID == "" {
		_, err := m.Create(ctx)
		return err
	}

	if err := m.ensureHistory(ctx, nextID); err != nil {
		m.logger.Printf("session: history load failed for %s: %v", nextID, err)
	}
	m.notifyTranscript()
	return nil
}

// ClearAll deletes every known conversation. All deletes are attempted
// and allowed to settle, one failure never aborts the rest. Local state
// then resets and exactly one fresh conversation is created and selected.
func (m *Manager) ClearAll(ctx context.Context) error {
	ids := m.store.IDs()

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = m.gateway.DeleteChat(ctx, id)
		}(i, id)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			m.logger.Printf("session: clear-all delete failed for %s: %v", ids[i], err)
		}
	}

	m.mu.Lock()
	m.store.Reset()
	m.currentID = ""
	m.mu.Unlock()

	m.notifyConversations()
	m.notifyTranscript()
	if failed > 0 {
		m.notifyError("Some chats could not be deleted")
	}

	_, err := m.Create(ctx)
	return err
}

// =============================================================================
// HOOK DISPATCH
// =============================================================================

func (m *Manager) notifyConversations() {
	if m.hooks.OnConversationsChanged != nil {
		m.hooks.OnConversationsChanged()
	}
}

func (m *Manager) notifyTranscript() {
	if m.hooks.OnTranscriptChanged != nil {
		m.hooks.OnTranscriptChanged()
	}
}

func (m *Manager) notifySendState(sending bool) {
	if m.hooks.OnSendStateChanged != nil {
		m.hooks.OnSendStateChanged(sending)
	}
}

func (m *Manager) notifyError(msg string) {
	if m.hooks.OnError != nil {
		m.hooks.OnError(msg)
	}
}

func (m *Manager) notifyNavCollapse() {
	if m.hooks.OnNavCollapse != nil {
		m.hooks.OnNavCollapse()
	}
}
