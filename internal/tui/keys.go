package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds Shifter's commands to keys and doubles as the bubbles/help
// model's key source (ShortHelp/FullHelp).
type KeyMap struct {
	TogglePause  key.Binding
	SeekForward  key.Binding
	SeekBackward key.Binding
	VolumeUp     key.Binding
	VolumeDown   key.Binding
	JumpToLive   key.Binding
	ToggleMute   key.Binding
	ToggleHelp   key.Binding
	Quit         key.Binding
	SetStep      key.Binding
}

// DefaultKeyMap is Shifter's fixed key binding set, matching §6's TUI key
// table (plus the mute/step supplements).
var DefaultKeyMap = KeyMap{
	TogglePause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	SeekForward: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "seek toward live"),
	),
	SeekBackward: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "seek away from live"),
	),
	VolumeUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "volume up"),
	),
	VolumeDown: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "volume down"),
	),
	JumpToLive: key.NewBinding(
		key.WithKeys("l", "L"),
		key.WithHelp("L", "jump to live"),
	),
	ToggleMute: key.NewBinding(
		key.WithKeys("m", "M"),
		key.WithHelp("M", "mute/unmute"),
	),
	ToggleHelp: key.NewBinding(
		key.WithKeys("h", "H"),
		key.WithHelp("H", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("Q", "quit"),
	),
	SetStep: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "seek step"),
	),
}

// ShortHelp implements help.KeyMap for the single-line legend.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePause, k.SeekForward, k.SeekBackward, k.VolumeUp, k.VolumeDown, k.JumpToLive, k.ToggleMute, k.ToggleHelp, k.Quit}
}

// FullHelp implements help.KeyMap for the expanded overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePause, k.SeekForward, k.SeekBackward},
		{k.VolumeUp, k.VolumeDown, k.SetStep},
		{k.JumpToLive, k.ToggleMute},
		{k.ToggleHelp, k.Quit},
	}
}
