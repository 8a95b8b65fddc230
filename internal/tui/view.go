package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/xesco/osx-shifter/internal/playback"
)

var (
	liveStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	shiftedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // cyan
	faintStyle   = lipgloss.NewStyle().Faint(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	helpPanelStyle = panelStyle.
			BorderForeground(lipgloss.Color("14"))
)

func panel(title, body string) string {
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, faintStyle.Render(title), body))
}

func stateStyle(s playback.State) lipgloss.Style {
	switch s {
	case playback.Paused:
		return pausedStyle
	case playback.TimeShifted:
		return shiftedStyle
	default:
		return liveStyle
	}
}

func (m Model) renderStatus() string {
	s := m.snapshot
	state := stateStyle(s.State).Render(fmt.Sprintf("%s %s", s.State.Symbol(), s.State.Label()))
	muted := ""
	if s.Muted {
		muted = " (muted)"
	}

	glitch := ""
	if m.glitchTicks > 0 {
		glitch = "   " + pausedStyle.Render(m.glitchText)
	}

	line := fmt.Sprintf(
		"State: %-24s Delay: %6.3fs   Buf: %3.0f%%   Vol: %3.0f%%%s   Step: %4s%s",
		state,
		s.DelayMs/1000.0,
		s.BufferUsage*100.0,
		s.Volume*100.0,
		muted,
		s.StepLabel,
		glitch,
	)
	return panel("Shifter", line)
}

func (m Model) renderBufferGauge() string {
	s := m.snapshot
	delaySeconds := math.Min(s.DelayMs/1000.0, m.bufferSeconds)
	label := fmt.Sprintf("%.1fs / %.0fs", delaySeconds, m.bufferSeconds)
	bar := m.bufferGauge.ViewAs(s.BufferUsage)
	return panel("Buffer", bar+"  "+label)
}

func (m Model) renderLevels() string {
	s := m.snapshot
	left := renderMeter(m.levelGaugeL, "L", s.PeakLeftDBFS)
	right := renderMeter(m.levelGaugeR, "R", s.PeakRightDBFS)
	return panel("Levels", left+"\n"+right)
}

func renderMeter(gauge interface{ ViewAs(float64) string }, label string, db float64) string {
	ratio := (db + 60.0) / 60.0
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return fmt.Sprintf(" %s %s %5.0f dB", label, gauge.ViewAs(ratio), db)
}

func (m Model) renderDevices() string {
	line := fmt.Sprintf("In: %s    Out: %s", m.engine.InputDeviceName, m.engine.OutputDeviceName)
	return panel("Devices", line)
}

// renderKeys renders the bubbles/help short (single-line) key legend.
func (m Model) renderKeys() string {
	return panel("Keys", m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderHelp renders the bubbles/help full overlay, grouped the way
// KeyMap.FullHelp lays out its columns.
func (m Model) renderHelp() string {
	return helpPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		faintStyle.Render("Help"),
		m.help.FullHelpView(m.keys.FullHelp()),
	))
}
