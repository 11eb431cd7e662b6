package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/confab/pkg/events"
	"github.com/go-go-golems/confab/pkg/remote"
	"github.com/go-go-golems/confab/pkg/session"
	"github.com/go-go-golems/confab/pkg/store"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	ctx := context.Background()
	m := session.NewManager(store.NewMemoryStore(), remote.NewEchoEndpoint())
	m.Initialize(ctx)

	model := NewModel(NewSessionBackend(ctx, m))
	next, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestModel_SubmitShowsExchange(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "Hi there")

	m, cmd := press(t, m, tea.KeyEnter)
	require.Equal(t, StateWaiting, m.state)
	require.Len(t, m.snapshot.Turns, 1)
	require.Contains(t, m.View(), "Hi there")

	m = run(t, m, cmd)
	require.Equal(t, StateUserInput, m.state)
	require.Len(t, m.snapshot.Turns, 2)
	require.Len(t, m.snapshot.History, 1)
	require.Equal(t, "chat saved", m.status)
	require.Empty(t, m.textArea.Value())
}

func TestModel_BlankSubmitDoesNothing(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, StateUserInput, m.state)
	require.Empty(t, m.snapshot.Turns)
}

func TestModel_NewChatSelectAndDelete(t *testing.T) {
	m := newTestModel(t)

	for _, text := range []string{"first", "second"} {
		m = typeText(t, m, text)
		var cmd tea.Cmd
		m, cmd = press(t, m, tea.KeyEnter)
		m = run(t, m, cmd)
		m, cmd = press(t, m, tea.KeyCtrlN)
		m = run(t, m, cmd)
	}
	require.Len(t, m.snapshot.History, 2)
	require.True(t, m.snapshot.ActiveID.IsZero())

	// ctrl+down from an untracked chat selects the newest entry
	m, cmd := press(t, m, tea.KeyCtrlDown)
	m = run(t, m, cmd)
	require.Equal(t, m.snapshot.History[0].ID, m.snapshot.ActiveID)
	require.Equal(t, "second", m.snapshot.Turns[0].Text)

	m, cmd = press(t, m, tea.KeyCtrlDown)
	m = run(t, m, cmd)
	require.Equal(t, "first", m.snapshot.Turns[0].Text)

	m, cmd = press(t, m, tea.KeyCtrlD)
	m = run(t, m, cmd)
	require.Len(t, m.snapshot.History, 1)
	require.True(t, m.snapshot.ActiveID.IsZero())
	require.Empty(t, m.snapshot.Turns)
}

func TestModel_DeleteUnsavedChat(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(t, m, tea.KeyCtrlD)
	require.Nil(t, cmd)
	require.Equal(t, "this chat is not saved yet", m.status)
}

func TestModel_HistoryEventUpdatesStatus(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(HistoryEventMsg{Event: &events.HistoryEvent{Type: events.EventTypePromoted, Title: "Hi"}})
	require.Equal(t, `saved "Hi"`, next.(Model).status)
}

func TestModel_Logout(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(t, m, tea.KeyCtrlL)
	next, quit := m.Update(cmd())
	require.True(t, next.(Model).LoggedOut())
	require.NotNil(t, quit)
}

func TestModel_LogoutWaitsForReply(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "Hi there")
	m, submit := press(t, m, tea.KeyEnter)
	require.Equal(t, StateWaiting, m.state)

	m, cmd := press(t, m, tea.KeyCtrlL)
	require.Nil(t, cmd)
	require.False(t, m.LoggedOut())
	require.Equal(t, "wait for the reply before logging out", m.status)

	next, _ := m.Update(LoggedOutMsg{Err: session.ErrSubmissionPending})
	require.False(t, next.(Model).LoggedOut())
	require.Nil(t, next.(Model).err)

	m = run(t, m, submit)
	require.Equal(t, StateUserInput, m.state)
	require.Len(t, m.snapshot.History, 1)
}
