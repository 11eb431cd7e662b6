package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Header         lipgloss.Style
	Sidebar        lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarActive  lipgloss.Style
	UserMessage    lipgloss.Style
	Assistant      lipgloss.Style
	ErrorMessage   lipgloss.Style
	FocusedInput   lipgloss.Style
	UnfocusedInput lipgloss.Style
	Status         lipgloss.Style
	Avatar         lipgloss.Style
}

const sidebarWidth = 32

func DefaultStyles() *Style {
	return &Style{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Width(sidebarWidth).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			Padding(0, 1),
		SidebarItem:   lipgloss.NewStyle(),
		SidebarActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		UserMessage: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Assistant: lipgloss.NewStyle().Padding(0, 1),
		ErrorMessage: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Padding(0, 1),
		FocusedInput: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("63")),
		UnfocusedInput: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")),
		Status: lipgloss.NewStyle().Faint(true).Padding(0, 1),
		Avatar: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("63")).
			Padding(0, 1),
	}
}
