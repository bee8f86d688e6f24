package keys

import "github.com/charmbracelet/bubbles/key"

// ConnectKeys includes terminal keys plus send/input and signal control
type ConnectKeys struct {
	TerminalKeys
	InsertMode     key.Binding
	Enter          key.Binding
	ToggleSendMode key.Binding
	ToggleDTR      key.Binding
	ToggleRTS      key.Binding
}

func NewConnectKeys() ConnectKeys {
	return ConnectKeys{
		TerminalKeys: NewTerminalKeys(),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle send mode"),
		),
		ToggleDTR: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "toggle DTR"),
		),
		ToggleRTS: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "toggle RTS"),
		),
	}
}

func (k ConnectKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Enter, k.Quit}
}

func (k ConnectKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Clear, k.ToggleSendMode},
		{k.ToggleHex, k.ToggleASCII, k.ToggleTimestamps, k.ToggleIndicators},
		{k.ToggleDTR, k.ToggleRTS, k.Up, k.Down},
		{k.Enter, k.Help, k.Quit},
	}
}
