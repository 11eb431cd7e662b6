package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/confab/pkg/events"
	"github.com/go-go-golems/confab/pkg/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// states:
// - user input
// - waiting for the reply to a submitted message

type State string

const (
	StateUserInput State = "user_input"
	StateWaiting   State = "waiting"
)

type Model struct {
	backend *SessionBackend

	snapshot session.State
	// optimistic user turn shown until the manager has appended it
	pendingText string
	turnsBefore int

	viewport viewport.Model
	textArea textarea.Model
	help     help.Model
	keyMap   KeyMap
	style    *Style

	renderer      *glamour.TermRenderer
	rendererWidth int

	width  int
	height int

	state     State
	err       error
	status    string
	loggedOut bool
}

func NewModel(backend *SessionBackend) Model {
	ret := Model{
		backend:  backend,
		style:    DefaultStyles(),
		keyMap:   DefaultKeyMap,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		state:    StateUserInput,
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "Ask anything..."
	ret.textArea.ShowLineNumbers = false
	ret.textArea.SetHeight(3)
	ret.textArea.KeyMap.InsertNewline.SetEnabled(false)
	ret.textArea.Focus()

	ret.snapshot = backend.Manager().Snapshot()
	ret.updateKeyBindings()

	return ret
}

// LoggedOut reports whether the program ended because the user logged out.
func (m Model) LoggedOut() bool {
	return m.loggedOut
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.err != nil && key.Matches(msg, m.keyMap.DismissError):
			m.err = nil
			m.updateKeyBindings()
			m.recomputeSize()
			return m, nil

		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.recomputeSize()
			return m, nil

		case key.Matches(msg, m.keyMap.SubmitMessage):
			return m, m.submit()

		case key.Matches(msg, m.keyMap.NewChat):
			if m.state == StateWaiting {
				m.status = "wait for the reply before starting a new chat"
				return m, nil
			}
			return m, m.backend.StartNew()

		case key.Matches(msg, m.keyMap.SelectPrevChat):
			return m, m.selectRelative(-1)

		case key.Matches(msg, m.keyMap.SelectNextChat):
			return m, m.selectRelative(1)

		case key.Matches(msg, m.keyMap.DeleteChat):
			if m.snapshot.ActiveID.IsZero() {
				m.status = "this chat is not saved yet"
				return m, nil
			}
			return m, m.backend.Delete(m.snapshot.ActiveID)

		case key.Matches(msg, m.keyMap.Logout):
			if m.state == StateWaiting {
				m.status = "wait for the reply before logging out"
				return m, nil
			}
			return m, m.backend.Logout()

		case key.Matches(msg, m.keyMap.ScrollUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keyMap.ScrollDown):
			m.viewport.HalfViewDown()
			return m, nil

		default:
			if m.state == StateUserInput {
				m.textArea, cmd = m.textArea.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeSize()

	case ExchangeDoneMsg:
		m.state = StateUserInput
		m.pendingText = ""
		m.status = ""
		switch {
		case errors.Is(msg.Err, session.ErrSubmissionPending):
			m.status = "a message is already awaiting a reply"
		case msg.Err != nil:
			m.err = msg.Err
		case msg.Exchange.Failed:
			m.status = "the server did not answer"
		case msg.Exchange.Promoted:
			m.status = "chat saved"
		}
		cmds = append(cmds, m.textArea.Focus())
		m.refresh()

	case OperationDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, session.ErrSubmissionPending) {
				m.status = fmt.Sprintf("cannot %s while waiting for a reply", msg.Op)
			} else {
				m.err = msg.Err
			}
		}
		m.refresh()

	case HistoryEventMsg:
		m.status = describeEvent(msg.Event)
		m.refresh()

	case LoggedOutMsg:
		if errors.Is(msg.Err, session.ErrSubmissionPending) {
			m.status = "cannot log out while waiting for a reply"
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err
			m.recomputeSize()
			return m, nil
		}
		m.loggedOut = true
		return m, tea.Quit
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) submit() tea.Cmd {
	if m.state == StateWaiting {
		m.status = "waiting for the reply..."
		return nil
	}
	text := m.textArea.Value()
	if session.IsBlank(text) {
		return nil
	}

	m.turnsBefore = len(m.snapshot.Turns)
	m.pendingText = text
	m.state = StateWaiting
	m.status = ""
	m.textArea.Reset()
	m.textArea.Blur()
	m.updateKeyBindings()
	m.recomputeSize()

	return m.backend.Submit(text)
}

// selectRelative moves the active conversation delta entries through the
// history. Newer entries come first.
func (m *Model) selectRelative(delta int) tea.Cmd {
	if m.state == StateWaiting {
		m.status = "wait for the reply before switching chats"
		return nil
	}
	history := m.snapshot.History
	if len(history) == 0 {
		return nil
	}
	idx := -1
	for i, e := range history {
		if e.ID == m.snapshot.ActiveID {
			idx = i
		}
	}
	next := idx + delta
	if idx == -1 && delta < 0 {
		return nil
	}
	if next < 0 || next >= len(history) {
		return nil
	}
	return m.backend.Select(history[next].ID)
}

func (m *Model) refresh() {
	m.snapshot = m.backend.Manager().Snapshot()
	m.updateKeyBindings()
	m.recomputeSize()
}

func (m *Model) updateKeyBindings() {
	m.keyMap.SubmitMessage.SetEnabled(m.state == StateUserInput)
	m.keyMap.SelectPrevChat.SetEnabled(len(m.snapshot.History) > 0)
	m.keyMap.SelectNextChat.SetEnabled(len(m.snapshot.History) > 0)
	m.keyMap.DeleteChat.SetEnabled(!m.snapshot.ActiveID.IsZero())
	m.keyMap.DismissError.SetEnabled(m.err != nil)
}

func (m *Model) recomputeSize() {
	if m.state == StateWaiting {
		m.snapshotWithPending()
	}

	mainWidth := m.mainWidth()
	headerHeight := lipgloss.Height(m.headerView())
	inputHeight := lipgloss.Height(m.inputView())
	statusHeight := lipgloss.Height(m.statusView())
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - headerHeight - inputHeight - statusHeight - helpHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = newHeight

	h, _ := m.style.FocusedInput.GetFrameSize()
	m.textArea.SetWidth(max(mainWidth-h, 1))

	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

// snapshotWithPending shows the submitted text until the manager's own copy
// of the user turn is visible in the snapshot.
func (m *Model) snapshotWithPending() {
	if m.pendingText == "" || len(m.snapshot.Turns) != m.turnsBefore {
		return
	}
	m.snapshot.Turns = append(m.snapshot.Turns, conversation.Turn{
		Sender: conversation.SenderUser,
		Text:   m.pendingText,
	})
}

func (m Model) mainWidth() int {
	w := m.width - sidebarWidth - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) markdown(text string, width int) string {
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Debug().Err(err).Msg("markdown renderer unavailable")
			return text
		}
		m.renderer = r
		m.rendererWidth = width
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m *Model) messageView() string {
	width := m.mainWidth()
	var sb strings.Builder

	if len(m.snapshot.Turns) == 0 {
		sb.WriteString(m.style.Status.Render("Start a conversation below."))
		sb.WriteString("\n")
	}

	for _, turn := range m.snapshot.Turns {
		switch {
		case turn.Sender == conversation.SenderUser:
			w, _ := m.style.UserMessage.GetFrameSize()
			sb.WriteString(m.style.UserMessage.Width(width - w).Render(turn.Text))
		case turn.Text == session.ErrorTurnText:
			w, _ := m.style.ErrorMessage.GetFrameSize()
			sb.WriteString(m.style.ErrorMessage.Width(width - w).Render(turn.Text))
		default:
			w, _ := m.style.Assistant.GetFrameSize()
			sb.WriteString(m.style.Assistant.Render(m.markdown(turn.Text, width-w)))
		}
		sb.WriteString("\n")
	}

	if m.state == StateWaiting {
		sb.WriteString(m.style.Status.Render("assistant is typing..."))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m Model) headerView() string {
	title := m.style.Header.Render("CONFAB")
	u, ok := m.backend.Manager().User()
	if !ok {
		return lipgloss.JoinHorizontal(lipgloss.Top, title, m.style.Status.Render("not signed in"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		title,
		m.style.Avatar.Render(u.Initial()),
		m.style.Status.Render(u.Name),
	)
}

func (m Model) sidebarView() string {
	var sb strings.Builder
	sb.WriteString(m.style.Header.Render("History"))
	sb.WriteString("\n")
	if len(m.snapshot.History) == 0 {
		sb.WriteString(m.style.Status.Render("no saved chats"))
	}
	for _, e := range m.snapshot.History {
		if e.ID == m.snapshot.ActiveID {
			sb.WriteString(m.style.SidebarActive.Render("▸ " + e.Title))
		} else {
			sb.WriteString(m.style.SidebarItem.Render("  " + e.Title))
		}
		sb.WriteString("\n")
	}
	return m.style.Sidebar.Height(max(m.height-1, 1)).Render(sb.String())
}

func (m Model) inputView() string {
	if m.err != nil {
		w, _ := m.style.ErrorMessage.GetFrameSize()
		return m.style.ErrorMessage.Width(m.mainWidth() - w).Render(m.err.Error())
	}
	v := m.textArea.View()
	if m.state == StateUserInput {
		return m.style.FocusedInput.Render(v)
	}
	return m.style.UnfocusedInput.Render(v)
}

func (m Model) statusView() string {
	return m.style.Status.Render(m.status)
}

func (m Model) View() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.inputView(),
		m.statusView(),
		m.help.View(m.keyMap),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
}

func describeEvent(e *events.HistoryEvent) string {
	if e == nil {
		return ""
	}
	switch e.Type {
	case events.EventTypePromoted:
		return fmt.Sprintf("saved %q", e.Title)
	case events.EventTypeDeleted:
		return "chat deleted"
	case events.EventTypeReset:
		return "new chat"
	case events.EventTypeFailed:
		return "the server did not answer"
	}
	return ""
}
