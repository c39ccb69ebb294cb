package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings of the toast host.
type KeyMap struct {
	// Demo toasts
	Success key.Binding
	Error   key.Binding
	Warning key.Binding
	Info    key.Binding
	Default key.Binding

	// Actions
	CyclePosition key.Binding
	DismissNewest key.Binding
	DismissAll    key.Binding
	Pause         key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Success, k.DismissNewest, k.CyclePosition, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Success, k.Error, k.Warning, k.Info, k.Default},
		{k.CyclePosition, k.DismissNewest, k.DismissAll, k.Pause},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Success: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "success toast"),
		),
		Error: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "error toast"),
		),
		Warning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warning toast"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info toast"),
		),
		Default: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "plain toast"),
		),
		CyclePosition: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next anchor"),
		),
		DismissNewest: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss newest"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "dismiss all"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause auto-close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
