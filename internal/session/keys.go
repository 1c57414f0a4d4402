package session

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the key bindings for the terminal UI.
type keyMap struct {
	Submit   key.Binding
	Complete key.Binding
	Quit     key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Complete}, {k.Quit}}
}

// defaultKeyMap returns the terminal UI key bindings. Completion is handled by
// the text input itself; the binding is listed for the help bar.
func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run command"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit without saving"),
		),
	}
}
