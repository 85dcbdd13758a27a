package viewer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer keybindings.
type KeyMap struct {
	Navigate  key.Binding
	Crash     key.Binding
	Script    key.Binding
	Navigable key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Navigate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "navigate"),
		),
		Crash: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "crash window"),
		),
		Script: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "run script"),
		),
		Navigable: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "toggle back-reference"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Crash, k.Script, k.Navigable, k.Quit}
}
