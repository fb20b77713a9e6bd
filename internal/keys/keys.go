// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the scene sorter.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Reordering
	MoveUp   key.Binding
	MoveDown key.Binding

	// Editing
	Add     key.Binding
	Insert  key.Binding
	Rename  key.Binding
	Button  key.Binding
	Delete  key.Binding
	Save    key.Binding
	Confirm key.Binding
	Escape  key.Binding

	// General
	ToggleAnchors key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),

		// Reordering
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move scene up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move scene down"),
		),

		// Editing
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add scene"),
		),
		Insert: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "insert above"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename scene"),
		),
		Button: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "add button"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete scene"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save deck"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),

		// General
		ToggleAnchors: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle anchors"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveUp, k.MoveDown, k.Add, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},                    // Navigation
		{k.Add, k.Insert, k.Rename, k.Button, k.Delete, k.Save}, // Editing
		{k.ToggleAnchors, k.Help, k.Escape, k.Quit},             // General
	}
}
