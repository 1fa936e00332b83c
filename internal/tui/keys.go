package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play      key.Binding
	Back      key.Binding
	Forward   key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Reset     key.Binding
	Summarize key.Binding
	Define    key.Binding
	Copy      key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back")),
		Forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward")),
		Faster:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "faster")),
		Slower:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "slower")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Summarize: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summarize")),
		Define:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "define")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy answer")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close panel")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.Forward, k.Faster, k.Slower, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Reset, k.Quit},
		{k.Back, k.Forward, k.Faster, k.Slower},
		{k.Summarize, k.Define, k.Copy, k.Dismiss},
		{k.Help},
	}
}
