package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings of the form editor.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Navigation
	Next key.Binding
	Prev key.Binding

	// Form actions
	Toggle      key.Binding
	Submit      key.Binding
	ResetAll    key.Binding
	ResetField  key.Binding
	ClearErrors key.Binding
}

// DefaultKeyMap returns the default key bindings. Everything except
// navigation and toggling uses ctrl so plain keys reach the inputs.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc/ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "ctrl+g"),
			key.WithHelp("f1/ctrl+g", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Cycle theme"),
		),

		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/down", "Next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/up", "Previous field"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle checkbox"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s", "enter"),
			key.WithHelp("ctrl+s/enter", "Submit"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Reset form"),
		),
		ResetField: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "Reset field"),
		),
		ClearErrors: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "Clear errors"),
		),
	}
}

// ShortHelp returns key bindings for the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ResetAll, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one group per section.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Toggle},
		{k.Submit, k.ResetAll, k.ResetField, k.ClearErrors},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
