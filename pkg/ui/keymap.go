package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SubmitMessage  key.Binding
	NewChat        key.Binding
	SelectPrevChat key.Binding
	SelectNextChat key.Binding
	DeleteChat     key.Binding
	Logout         key.Binding
	ScrollUp       key.Binding
	ScrollDown     key.Binding
	DismissError   key.Binding

	Help key.Binding
	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	SubmitMessage:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	NewChat:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
	SelectPrevChat: key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+↑", "newer chat")),
	SelectNextChat: key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+↓", "older chat")),
	DeleteChat:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete chat")),
	Logout:         key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
	ScrollUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	ScrollDown:     key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
	DismissError:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	Help:           key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	Quit:           key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SubmitMessage, k.NewChat, k.DeleteChat, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SubmitMessage, k.NewChat, k.DeleteChat},
		{k.SelectPrevChat, k.SelectNextChat, k.ScrollUp, k.ScrollDown},
		{k.Logout, k.DismissError, k.Help, k.Quit},
	}
}
