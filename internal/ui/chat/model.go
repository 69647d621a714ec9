// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation workspace of the TUI.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aide-tui/internal/api"
	"github.com/jeranaias/aide-tui/internal/model"
	"github.com/jeranaias/aide-tui/internal/session"
	"github.com/jeranaias/aide-tui/internal/ui/components"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
	"github.com/jeranaias/aide-tui/internal/view"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea identifies which region of the workspace receives key input.
type focusArea int

const (
	focusInput focusArea = iota // message input at the bottom
	focusList                   // conversation list in the sidebar
)

// =============================================================================
// MODEL AND OPTIONS
// =============================================================================

// Exporter fetches the full transcript of a conversation from the
// backend for export. *api.Client satisfies it.
type Exporter interface {
	ExportChat(ctx context.Context, chatID string) (*api.ExportData, error)
}

// eventBuffer is the capacity of the session event channel. Hook
// callbacks never block on it; if the UI falls this far behind, excess
// events are dropped and the next operation result refreshes the
// projections anyway.
const eventBuffer = 64

// Options configures a chat model.
type Options struct {
	// Session drives all conversation state. Required.
	Session *session.Manager

	// Exporter serves /export. Usually the api.Client; nil disables export.
	Exporter Exporter

	// Version is shown on the welcome screen and by /version.
	Version string

	// ExportFormat is the default /export format ("markdown" or "json").
	ExportFormat string

	// ExportDir overrides the export output directory when non-empty.
	ExportDir string

	// SidebarWidth is the conversation list width in columns.
	SidebarWidth int
}

// Model is the Bubble Tea model for the chat view. It owns no
// conversation state of its own: every render projects fresh from the
// session manager, and mutations run as async commands against it.
type Model struct {
	// Synchronization layer
	session  *session.Manager
	exporter Exporter
	events   chan SessionEventMsg

	// Bindings
	keys KeyMap

	// UI components
	sidebar    *components.Sidebar
	vp         viewport.Model
	transcript *components.MessageList
	input      *components.InputArea
	status     *components.StatusBar
	welcome    components.Welcome
	confirm    *components.ConfirmPrompt
	toasts     *components.ToastManager
	thinking   components.ThinkingIndicator
	loading    components.HistoryLoadingSpinner

	// Terminal geometry and layout
	width          int
	height         int
	ready          bool
	focus          focusArea
	sidebarVisible bool
	sidebarWidth   int

	// Overlays
	showHelp   bool
	showMemory bool

	// Operation state, mirrored from the session layer for rendering
	transcriptState view.TranscriptState
	sending         bool
	loadingHistory  bool
	connected       bool

	// Build and export settings
	version      string
	exportFormat string
	exportDir    string
}

// New creates a chat model bound to the given session manager. It
// installs the manager's hooks, so call it before Bootstrap runs.
func New(opts Options) Model {
	theme := styles.NewTheme()

	sidebarWidth := opts.SidebarWidth
	if sidebarWidth <= 0 {
		sidebarWidth = 32
	}

	welcome := components.NewWelcome(theme)
	welcome.SetVersion(opts.Version)

	events := make(chan SessionEventMsg, eventBuffer)
	push := func(ev SessionEventMsg) {
		select {
		case events <- ev:
		default:
		}
	}

	opts.Session.WithHooks(session.Hooks{
		OnConversationsChanged: func() { push(SessionEventMsg{Kind: SessionEventConversations}) },
		OnTranscriptChanged:    func() { push(SessionEventMsg{Kind: SessionEventTranscript}) },
		OnSendStateChanged:     func(sending bool) { push(SessionEventMsg{Kind: SessionEventSendState, Sending: sending}) },
		OnError:                func(msg string) { push(SessionEventMsg{Kind: SessionEventNotice, Notice: msg}) },
		OnNavCollapse:          func() { push(SessionEventMsg{Kind: SessionEventNavCollapse}) },
	})

	return Model{
		session:        opts.Session,
		exporter:       opts.Exporter,
		events:         events,
		keys:           DefaultKeyMap(),
		sidebar:        components.NewSidebar(theme),
		vp:             viewport.New(80, 20),
		transcript:     components.NewMessageList(theme),
		input:          components.NewInputArea(theme),
		status:         components.NewStatusBar(theme),
		welcome:        welcome,
		confirm:        components.NewConfirmPrompt(theme),
		toasts:         components.NewToastManager(),
		thinking:       components.NewThinkingIndicator(),
		focus:          focusInput,
		sidebarVisible: true,
		sidebarWidth:   sidebarWidth,
		connected:      true,
		version:        opts.Version,
		exportFormat:   opts.ExportFormat,
		exportDir:      opts.ExportDir,
	}
}

// =============================================================================
// TEA LIFECYCLE
// =============================================================================

// Init starts the bootstrap fetch, the session event pump, and the
// toast expiry ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Focus(),
		BootstrapCmd(m.session),
		waitForSessionEvent(m.events),
		components.ToastTickCmd(),
	)
}

// Update routes one message to its handler and returns the successor
// model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.onResize(msg)

	case tea.KeyMsg:
		return m.onKey(msg)

	case tea.MouseMsg:
		var viewCmd tea.Cmd
		m.vp, viewCmd = m.vp.Update(msg)
		return m, viewCmd

	case SessionEventMsg:
		return m.handleSessionEvent(msg)

	case BootstrapDoneMsg:
		return m.handleBootstrapDone(msg)

	case SwitchDoneMsg:
		return m.handleSwitchDone(msg)

	case CreateDoneMsg:
		return m.handleCreateDone(msg)

	case SendDoneMsg:
		return m.handleSendDone(msg)

	case DeleteDoneMsg:
		return m.handleDeleteDone(msg)

	case ClearAllDoneMsg:
		return m.handleClearAllDone(msg)

	case ExportDoneMsg:
		return m.handleExportDone(msg)

	case CopyDoneMsg:
		return m.handleCopyDone(msg)

	case components.ConfirmResponseMsg:
		return m.handleConfirmResponse(msg)

	case ConfigReloadedMsg:
		m.toasts.AddStatus("Configuration reloaded")
		return m, nil

	case components.ToastTickMsg:
		// The ticker stays armed for the life of the program so toasts
		// added from any code path expire without extra bookkeeping.
		m.toasts.Sweep()
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		var thinkCmd, loadCmd tea.Cmd
		m.thinking, thinkCmd = m.thinking.Update(msg)
		m.loading, loadCmd = m.loading.Update(msg)
		return m, tea.Batch(thinkCmd, loadCmd)

	default:
		// Everything else feeds the focused input and the viewport.
		var inCmd, viewCmd tea.Cmd
		if m.focus == focusInput {
			m.input, inCmd = m.input.Update(msg)
		}
		m.vp, viewCmd = m.vp.Update(msg)
		return m, tea.Batch(inCmd, viewCmd)
	}
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

// handleSessionEvent reacts to a push from the synchronization layer
// and re-arms the pump so the next push is delivered too.
func (m Model) handleSessionEvent(ev SessionEventMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForSessionEvent(m.events)}

	switch ev.Kind {
	case SessionEventConversations:
		m.refreshSidebar()

	case SessionEventTranscript:
		if cmd := m.refreshTranscript(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.vp.GotoBottom()

	case SessionEventSendState:
		m.sending = ev.Sending
		if ev.Sending {
			m.status.SetStatus(components.StatusSending)
			cmds = append(cmds, m.thinking.Start())
		} else {
			m.thinking.Stop()
			if !m.loadingHistory {
				m.status.SetStatus(components.StatusReady)
			}
		}

	case SessionEventNotice:
		m.toasts.AddError(ev.Notice)

	case SessionEventNavCollapse:
		if m.focus == focusList {
			m.focus = focusInput
			m.sidebar.Blur()
			cmds = append(cmds, m.input.Focus())
		}
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// setConnectivity translates an operation error into the online badge.
// A transport-level failure flips to offline; a backend error response
// proves the backend is reachable, so it flips back online.
func (m *Model) setConnectivity(err error) {
	switch {
	case err == nil:
		m.connected = true
	case api.IsNetworkFailure(err):
		m.connected = false
	case api.IsApplicationFailure(err):
		m.connected = true
	}
	m.status.SetConnected(m.connected)
}

func (m Model) handleBootstrapDone(msg BootstrapDoneMsg) (tea.Model, tea.Cmd) {
	m.setConnectivity(msg.Err)
	if msg.Err != nil {
		m.toasts.AddError("Failed to load conversations")
	}

	m.refreshSidebar()
	cmd := m.refreshTranscript()
	m.vp.GotoBottom()
	return m, cmd
}

func (m Model) handleSwitchDone(msg SwitchDoneMsg) (tea.Model, tea.Cmd) {
	m.setConnectivity(msg.Err)
	if msg.Err != nil {
		m.toasts.AddError("Failed to load conversation history")
	}

	m.refreshSidebar()
	cmd := m.refreshTranscript()
	m.vp.GotoBottom()
	return m, cmd
}

func (m Model) handleCreateDone(msg CreateDoneMsg) (tea.Model, tea.Cmd) {
	// Failure is already surfaced through the session error hook; only
	// the connectivity badge is updated here.
	m.setConnectivity(msg.Err)

	m.refreshSidebar()
	cmd := m.refreshTranscript()

	m.focus = focusInput
	m.sidebar.Blur()
	return m, tea.Batch(cmd, m.input.Focus())
}

func (m Model) handleSendDone(msg SendDoneMsg) (tea.Model, tea.Cmd) {
	// On failure the transcript already carries the synthetic error
	// reply and the session error hook raised a toast.
	m.setConnectivity(msg.Err)

	m.refreshSidebar()
	cmd := m.refreshTranscript()
	m.vp.GotoBottom()
	return m, cmd
}

func (m Model) handleDeleteDone(msg DeleteDoneMsg) (tea.Model, tea.Cmd) {
	m.setConnectivity(msg.Err)
	if msg.Err == nil {
		m.toasts.AddStatus("Conversation deleted")
	}

	m.refreshSidebar()
	cmd := m.refreshTranscript()
	return m, cmd
}

func (m Model) handleClearAllDone(msg ClearAllDoneMsg) (tea.Model, tea.Cmd) {
	m.setConnectivity(msg.Err)
	if msg.Err == nil {
		m.toasts.AddStatus("All conversations deleted")
	}

	m.refreshSidebar()
	cmd := m.refreshTranscript()
	return m, cmd
}

func (m Model) handleExportDone(msg ExportDoneMsg) (tea.Model, tea.Cmd) {
	m.setConnectivity(msg.Err)
	if msg.Err != nil {
		m.toasts.AddError("Export failed: " + msg.Err.Error())
		return m, nil
	}
	m.toasts.AddSuccess("Exported to " + msg.Path)
	return m, nil
}

func (m Model) handleCopyDone(msg CopyDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError("Copy failed: " + msg.Err.Error())
		return m, nil
	}
	m.toasts.AddSuccess("Reply copied to clipboard")
	return m, nil
}

func (m Model) handleConfirmResponse(msg components.ConfirmResponseMsg) (tea.Model, tea.Cmd) {
	if !msg.Confirmed {
		return m, nil
	}

	switch msg.Action {
	case components.ConfirmClearAll:
		return m, ClearAllCmd(m.session)
	default:
		return m, DeleteCmd(m.session, msg.TargetID)
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, whatever is on screen.
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// The confirmation dialog swallows keys while visible.
	if m.confirm.IsVisible() {
		cmd, _ := m.confirm.Update(msg)
		return m, cmd
	}

	// Info overlays close on the usual dismiss keys and ignore the rest.
	if m.showHelp || m.showMemory {
		switch msg.String() {
		case "esc", "enter", "q":
			m.showHelp, m.showMemory = false, false
		}
		return m, nil
	}

	// Global shortcuts.
	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m, CreateCmd(m.session)

	case key.Matches(msg, m.keys.DeleteChat):
		return m.promptDelete()

	case key.Matches(msg, m.keys.FocusList):
		return m.toggleFocus()

	case key.Matches(msg, m.keys.PageUp):
		m.vp.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.vp.HalfViewDown()
		return m, nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleListKey handles keys while the conversation list has focus.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		id := m.sidebar.SelectedID()
		m.focus = focusInput
		m.sidebar.Blur()
		focusCmd := m.input.Focus()
		if id == "" || id == m.session.CurrentID() {
			// Re-selecting the active conversation changes nothing.
			return m, focusCmd
		}
		return m, tea.Batch(focusCmd, SwitchCmd(m.session, id))

	case key.Matches(msg, m.keys.Escape):
		m.focus = focusInput
		m.sidebar.Blur()
		return m, m.input.Focus()
	}

	return m, nil
}

// handleInputKey handles keys while the message input has focus.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case key.Matches(msg, m.keys.Escape):
		if m.toasts.HasToasts() {
			m.toasts.Clear()
			return m, nil
		}
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit handles Enter in the message input: slash commands are
// dispatched locally, everything else goes to the backend.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	if strings.HasPrefix(content, "/") {
		return m.runSlash(content)
	}

	// One exchange at a time. The draft stays in the input so nothing
	// typed is lost.
	if m.session.IsSending() {
		m.toasts.AddWarning("Still waiting for a reply - hang on")
		return m, nil
	}

	m.input.Reset()
	return m, SendCmd(m.session, content)
}

// =============================================================================
// FOCUS AND DIALOGS
// =============================================================================

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if !m.sidebarVisible {
		m.toasts.AddStatus("Terminal too narrow for the conversation list")
		return m, nil
	}

	if m.focus == focusList {
		m.focus = focusInput
		m.sidebar.Blur()
		return m, m.input.Focus()
	}

	m.focus = focusList
	m.input.Blur()
	m.sidebar.Focus()
	m.sidebar.CursorToActive()
	return m, nil
}

// promptDelete opens the delete confirmation for the selected
// conversation when the list has focus, otherwise for the current one.
func (m Model) promptDelete() (tea.Model, tea.Cmd) {
	id := m.session.CurrentID()
	if m.focus == focusList {
		if selected := m.sidebar.SelectedID(); selected != "" {
			id = selected
		}
	}
	m.showDeletePrompt(id)
	return m, nil
}

// showDeletePrompt validates the target and opens the confirmation
// dialog. Nothing is deleted until the backend confirms afterwards.
func (m *Model) showDeletePrompt(id string) {
	if id == "" {
		m.toasts.AddWarning("No conversation to delete")
		return
	}

	title := ""
	found := false
	for _, conv := range m.session.Conversations() {
		if conv.ID == id {
			title = conv.Title
			found = true
			break
		}
	}
	if !found {
		m.toasts.AddWarning("No conversation with id " + id)
		return
	}

	m.confirm.ShowDelete(id, title)
}

// =============================================================================
// PROJECTION REFRESH
// =============================================================================

// refreshSidebar re-projects the conversation list and the status bar
// counts from the session layer.
func (m *Model) refreshSidebar() {
	entries := view.ProjectList(m.session.Conversations(), m.session.CurrentID(), time.Now())
	m.sidebar.SetEntries(entries)
	m.sidebar.CursorToActive()

	title := ""
	messages := 0
	if conv, ok := m.session.Current(); ok {
		title = conv.Title
		messages = conv.MessageCount()
	}
	m.status.SetCounts(len(entries), messages)
	m.status.SetTitle(title)
}

// refreshTranscript re-projects the transcript and manages the history
// loading spinner across state transitions. The returned command, when
// non-nil, starts the spinner animation.
func (m *Model) refreshTranscript() tea.Cmd {
	conv, _ := m.session.Current()
	t := view.ProjectTranscript(conv, m.session.Memory(), time.Now())
	m.transcriptState = t.State

	var cmd tea.Cmd
	switch t.State {
	case view.TranscriptLoading:
		if !m.loadingHistory {
			m.loadingHistory = true
			m.loading = components.NewHistoryLoadingSpinner(t.Title)
			cmd = m.loading.Start()
			m.status.SetStatus(components.StatusLoading)
		}

	case view.TranscriptWelcome:
		m.stopHistorySpinner()
		m.welcome.SetMemory(t.Memory)

	case view.TranscriptMessages:
		m.stopHistorySpinner()
		m.transcript.SetMessages(t.Messages)
		m.vp.SetContent(m.transcript.View())

	default:
		m.stopHistorySpinner()
	}

	return cmd
}

func (m *Model) stopHistorySpinner() {
	if !m.loadingHistory {
		return
	}
	m.loadingHistory = false
	m.loading.Stop()
	if !m.sending {
		m.status.SetStatus(components.StatusReady)
	}
}

// lastReply returns the content of the newest assistant message in the
// current conversation, or "" when there is none.
func (m *Model) lastReply() string {
	conv, ok := m.session.Current()
	if !ok {
		return ""
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == model.RoleAssistant {
			return conv.Messages[i].Content
		}
	}
	return ""
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) onResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.ready = true

	// The sidebar collapses on narrow terminals and never takes more
	// than a third of the width.
	m.sidebarVisible = m.width >= 80
	sidebarWidth := m.sidebarWidth
	if maxWidth := m.width / 3; sidebarWidth > maxWidth {
		sidebarWidth = maxWidth
	}
	if m.focus == focusList && !m.sidebarVisible {
		m.focus = focusInput
		m.sidebar.Blur()
	}

	// Conservative reservations; renderWorkspace measures the actual
	// component heights and corrects the viewport if these drift.
	const (
		headerHeight      = 1
		inputRegionHeight = 6 // activity line + input area render
		statusBarHeight   = 2
	)

	contentHeight := m.height - headerHeight - inputRegionHeight - statusBarHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	mainWidth := m.width
	if m.sidebarVisible {
		mainWidth -= sidebarWidth
	}
	if mainWidth < 1 {
		mainWidth = 1
	}

	m.vp.Width = mainWidth
	m.vp.Height = contentHeight
	m.transcript.SetWidth(mainWidth)
	m.sidebar.SetSize(sidebarWidth, contentHeight)
	m.input.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.welcome.SetSize(mainWidth, contentHeight)
	m.confirm.SetSize(m.width, m.height)

	// Re-wrap transcript content at the new width.
	cmd := m.refreshTranscript()

	var viewCmd tea.Cmd
	m.vp, viewCmd = m.vp.Update(msg)

	return m, tea.Batch(cmd, viewCmd)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// IsSending reports whether a message exchange is in flight.
func (m *Model) IsSending() bool {
	return m.sending
}

// Connected reports the last observed backend reachability.
func (m *Model) Connected() bool {
	return m.connected
}
