package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusChat focusArea = iota
	focusPanel
)

const (
	statusTickInterval = time.Second
	panelWidth         = 44
	inputCharLimit     = 2000
)

type (
	historyLoadedMsg struct{ err error }
	unreadLoadedMsg  struct{ err error }
	allLoadedMsg     struct{ err error }
	messageSentMsg   struct{ err error }
	markedReadMsg    struct{ err error }
	soundReadyMsg    struct{ err error }
	statusTickMsg    time.Time
)

// Model is the root program model.
type Model struct {
	deps Deps

	input     textinput.Model
	vp        viewport.Model
	toastCtrl *ToastController
	toastView *ToastView

	focus     focusArea
	panelSel  int
	showPanel bool
	width     int
	height    int
	ready     bool
	lastErr   string
}

// NewModel constructs the root model around deps.
func NewModel(deps Deps) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = inputCharLimit
	input.Focus()

	ctrl := NewToastController()
	return &Model{
		deps:      deps,
		input:     input,
		toastCtrl: ctrl,
		toastView: NewToastView(ctrl),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.deps.Events.WaitForSignal(),
		m.loadHistoryCmd(),
		m.loadUnreadCmd(),
		m.loadAllCmd(),
		m.loadSoundCmd(),
		scheduleStatusTick(),
	)
}

func scheduleStatusTick() tea.Cmd {
	return tea.Tick(statusTickInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Conversation.LoadHistory(context.Background(), m.deps.Other.ID)
		if err == nil && m.deps.MsgCache != nil {
			cacheErr := m.deps.MsgCache.ReplaceConversation(
				context.Background(), m.deps.Self.ID, m.deps.Other.ID, m.deps.Conversation.Messages())
			if cacheErr != nil {
				m.deps.Logger.Warn().Err(cacheErr).Msg("failed to cache conversation")
			}
		}
		return historyLoadedMsg{err: err}
	}
}

func (m *Model) loadUnreadCmd() tea.Cmd {
	return func() tea.Msg {
		return unreadLoadedMsg{err: m.deps.Notifications.LoadUnread(context.Background())}
	}
}

func (m *Model) loadAllCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Notifications.LoadAll(context.Background())
		if err == nil && m.deps.NotifCache != nil {
			cacheErr := m.deps.NotifCache.Replace(
				context.Background(), m.deps.Self.ID, m.deps.Notifications.All())
			if cacheErr != nil {
				m.deps.Logger.Warn().Err(cacheErr).Msg("failed to cache notifications")
			}
		}
		return allLoadedMsg{err: err}
	}
}

func (m *Model) loadSoundCmd() tea.Cmd {
	return func() tea.Msg {
		return soundReadyMsg{err: m.deps.Gate.Load(context.Background())}
	}
}

func (m *Model) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.deps.Conversation.Send(context.Background(), m.deps.Other.ID, content)
		return messageSentMsg{err: err}
	}
}

func (m *Model) markReadCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Notifications.MarkRead(context.Background(), id)
		if err == nil && m.deps.NotifCache != nil {
			if cacheErr := m.deps.NotifCache.MarkRead(context.Background(), id); cacheErr != nil {
				m.deps.Logger.Warn().Err(cacheErr).Msg("failed to cache read flag")
			}
		}
		return markedReadMsg{err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		// Any keypress counts as the user interaction that arms the chime.
		m.deps.Gate.Unlock()
		return m.handleKey(msg)

	case drainEventsMsg:
		return m, m.handleDrain()

	case toastTickMsg:
		m.toastCtrl.Tick(toastTickInterval)
		if m.toastCtrl.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toastCtrl.SetTicking(false)
		return m, nil

	case statusTickMsg:
		return m, scheduleStatusTick()

	case historyLoadedMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		m.syncViewport(true)
		return m, nil

	case unreadLoadedMsg, allLoadedMsg:
		m.clampPanelSel()
		return m, nil

	case messageSentMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.syncViewport(true)
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		m.clampPanelSel()
		return m, nil

	case soundReadyMsg:
		if msg.err != nil {
			m.deps.Logger.Warn().Err(msg.err).Msg("notification sound unavailable")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleDrain applies buffered push events, shows toasts, and re-arms the
// signal wait. Stores were already updated by the connection handlers; this
// is the render-side half.
func (m *Model) handleDrain() tea.Cmd {
	cmds := []tea.Cmd{m.deps.Events.WaitForSignal()}

	for _, e := range m.deps.Events.Drain() {
		switch {
		case e.Message != nil:
			if m.deps.MsgCache != nil {
				if err := m.deps.MsgCache.Save(context.Background(), *e.Message); err != nil {
					m.deps.Logger.Warn().Err(err).Msg("failed to cache message")
				}
			}
		case e.Notification != nil:
			m.toastCtrl.Push(*e.Notification)
			if m.deps.NotifCache != nil {
				if err := m.deps.NotifCache.Save(context.Background(), *e.Notification); err != nil {
					m.deps.Logger.Warn().Err(err).Msg("failed to cache notification")
				}
			}
		}
	}

	m.syncViewport(m.vp.AtBottom())

	if m.toastCtrl.HasToasts() && !m.toastCtrl.Ticking() {
		m.toastCtrl.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.toggleFocus()
		return m, nil

	case "esc":
		if m.toastCtrl.HasToasts() {
			m.toastCtrl.Dismiss()
			return m, nil
		}
		if m.focus == focusPanel {
			m.toggleFocus()
			return m, nil
		}
		return m, tea.Quit
	}

	if m.focus == focusPanel {
		return m.handlePanelKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		content := m.input.Value()
		m.input.Reset()
		return m, m.sendCmd(content)

	case "pgup":
		m.vp.HalfViewUp()
		return m, nil

	case "pgdown":
		m.vp.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.deps.Notifications.All()

	switch msg.String() {
	case "j", "down":
		if m.panelSel < len(items)-1 {
			m.panelSel++
		}
		return m, nil

	case "k", "up":
		if m.panelSel > 0 {
			m.panelSel--
		}
		return m, nil

	case "enter", "r":
		if m.panelSel < len(items) && !items[m.panelSel].IsRead {
			return m, m.markReadCmd(items[m.panelSel].ID)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusChat {
		m.focus = focusPanel
		m.showPanel = true
		m.input.Blur()
	} else {
		m.focus = focusChat
		m.showPanel = false
		m.input.Focus()
	}
	m.resize()
	m.syncViewport(true)
}

func (m *Model) clampPanelSel() {
	n := len(m.deps.Notifications.All())
	if m.panelSel >= n {
		m.panelSel = max(n-1, 0)
	}
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}

	chatWidth := m.width
	if m.showPanel {
		chatWidth = m.width - panelWidth
	}

	// One row each for the input line and the status bar.
	vpHeight := m.height - 2
	if !m.ready {
		m.vp = viewport.New(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.vp.Width = chatWidth
		m.vp.Height = vpHeight
	}
	m.input.Width = chatWidth - 4
	m.syncViewport(true)
}

func (m *Model) syncViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.renderChat(m.vp.Width))
	if gotoBottom {
		m.vp.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	chatCol := lipgloss.JoinVertical(lipgloss.Left, m.vp.View(), m.renderInput())

	body := chatCol
	if m.showPanel {
		panel := m.renderPanel(panelWidth, m.height-1)
		body = lipgloss.JoinHorizontal(lipgloss.Top, chatCol, panel)
	}

	sections := []string{body}
	if footer := m.toastView.Footer(m.width); footer != "" {
		sections = append(sections, footer)
	}
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
