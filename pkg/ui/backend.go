package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/confab/pkg/events"
	"github.com/go-go-golems/confab/pkg/session"
)

// ExchangeDoneMsg is sent when a submission finished, successfully or not.
type ExchangeDoneMsg struct {
	Exchange session.Exchange
	Err      error
}

// HistoryEventMsg wraps an event published by the session manager.
type HistoryEventMsg struct {
	Event *events.HistoryEvent
}

// OperationDoneMsg reports the outcome of new chat, select and delete.
type OperationDoneMsg struct {
	Op  string
	Err error
}

type LoggedOutMsg struct {
	Err error
}

// SessionBackend turns manager calls into tea.Cmds so that the blocking
// endpoint call never runs on the update loop.
type SessionBackend struct {
	ctx     context.Context
	manager *session.Manager
}

func NewSessionBackend(ctx context.Context, manager *session.Manager) *SessionBackend {
	return &SessionBackend{
		ctx:     ctx,
		manager: manager,
	}
}

func (s *SessionBackend) Manager() *session.Manager {
	return s.manager
}

func (s *SessionBackend) Submit(text string) tea.Cmd {
	return func() tea.Msg {
		ex, err := s.manager.Submit(s.ctx, text)
		return ExchangeDoneMsg{Exchange: ex, Err: err}
	}
}

func (s *SessionBackend) StartNew() tea.Cmd {
	return func() tea.Msg {
		return OperationDoneMsg{Op: "new chat", Err: s.manager.StartNew(s.ctx)}
	}
}

func (s *SessionBackend) Select(id conversation.ID) tea.Cmd {
	return func() tea.Msg {
		_, err := s.manager.Select(s.ctx, id)
		return OperationDoneMsg{Op: "select", Err: err}
	}
}

func (s *SessionBackend) Delete(id conversation.ID) tea.Cmd {
	return func() tea.Msg {
		return OperationDoneMsg{Op: "delete", Err: s.manager.Delete(s.ctx, id)}
	}
}

func (s *SessionBackend) Logout() tea.Cmd {
	return func() tea.Msg {
		return LoggedOutMsg{Err: s.manager.Logout(s.ctx)}
	}
}

// SendHistoryEvents returns a callback that forwards manager events into p.
func SendHistoryEvents(p *tea.Program) func(*events.HistoryEvent) {
	return func(e *events.HistoryEvent) {
		p.Send(HistoryEventMsg{Event: e})
	}
}
