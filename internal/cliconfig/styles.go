package cliconfig

import "github.com/charmbracelet/lipgloss"

// Colour palette for the themed help printer and PrintError. The TUI defines
// its own styles in internal/tui, and the startup banner is unstyled.
var (
	AccentColor  = lipgloss.Color("#00AFFF") // live, active state
	LiveColor    = lipgloss.Color("#00D700") // live playback
	ShiftColor   = lipgloss.Color("#FFD700") // time-shifted playback
	PausedColor  = lipgloss.Color("#FF8C00") // paused
	MutedColor   = lipgloss.Color("#888888")
	ErrColor     = lipgloss.Color("#FF4040")
	TextColor    = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ErrColor)

	FlagStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	DefaultValStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)
