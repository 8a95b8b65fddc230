// Package tui implements Shifter's terminal status display: a bubbletea
// model polling the playback controller at ~30Hz and rendering it with
// lipgloss, mirroring the panel layout of the original ratatui interface
// (status, buffer gauge, level meters, device info, key legend, help
// overlay).
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xesco/osx-shifter/internal/audio"
	"github.com/xesco/osx-shifter/internal/playback"
)

// pollInterval matches the original UI's ~30 FPS redraw cadence.
const pollInterval = 33 * time.Millisecond

// glitchHoldTicks is how many poll ticks the "underrun"/"overrun" status flag
// stays visible after it fires, so a single glitch is noticeable rather than
// flashing for one 33ms frame.
const glitchHoldTicks = 15

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model wrapping an audio Engine.
type Model struct {
	engine *audio.Engine

	bufferSeconds float64
	showHelp      bool
	quitting      bool
	width         int

	bufferGauge progress.Model
	levelGaugeL progress.Model
	levelGaugeR progress.Model

	keys KeyMap
	help help.Model

	snapshot playback.Snapshot

	lastDiag    audio.Snapshot
	glitchTicks int
	glitchText  string
}

// New creates a Model bound to engine. bufferSeconds is the configured ring
// capacity, used only to label the buffer gauge.
func New(engine *audio.Engine, bufferSeconds float64) Model {
	return Model{
		engine:        engine,
		bufferSeconds: bufferSeconds,
		bufferGauge:   progress.New(progress.WithDefaultGradient()),
		levelGaugeL:   progress.New(progress.WithoutPercentage()),
		levelGaugeR:   progress.New(progress.WithoutPercentage()),
		keys:          DefaultKeyMap,
		help:          help.New(),
		width:         80,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bufferGauge.Width = barWidth(m.width)
		m.levelGaugeL.Width = barWidth(m.width)
		m.levelGaugeR.Width = barWidth(m.width)
		m.help.Width = m.width
		return m, nil

	case tickMsg:
		m.snapshot = m.engine.Controller.Snapshot()
		m.pollDiagnostics()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// pollDiagnostics implements §7's "transient status flag read by UI" for
// ring overruns/underruns: it diffs against the last-seen counters and holds
// a status message on screen for glitchHoldTicks polls.
func (m *Model) pollDiagnostics() {
	current := m.engine.Diag.Snapshot()
	switch {
	case current.Overruns != m.lastDiag.Overruns:
		m.glitchText = "overrun"
		m.glitchTicks = glitchHoldTicks
	case current.Underruns != m.lastDiag.Underruns:
		m.glitchText = "underrun"
		m.glitchTicks = glitchHoldTicks
	case m.glitchTicks > 0:
		m.glitchTicks--
	}
	m.lastDiag = current
}

func barWidth(termWidth int) int {
	w := termWidth - 30
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.engine.Controller

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.TogglePause):
		ctrl.TogglePause()
	case key.Matches(msg, m.keys.SeekForward):
		ctrl.SeekForward()
	case key.Matches(msg, m.keys.SeekBackward):
		ctrl.SeekBackward()
	case key.Matches(msg, m.keys.VolumeUp):
		ctrl.VolumeUp()
	case key.Matches(msg, m.keys.VolumeDown):
		ctrl.VolumeDown()
	case key.Matches(msg, m.keys.JumpToLive):
		ctrl.JumpToLive()
	case key.Matches(msg, m.keys.ToggleMute):
		ctrl.ToggleMute()
	case key.Matches(msg, m.keys.ToggleHelp):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.SetStep):
		ctrl.SetStep(int(msg.String()[0] - '1'))
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	body := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		m.renderStatus(),
		m.renderBufferGauge(),
		m.renderLevels(),
		m.renderDevices(),
		m.renderKeys(),
	)

	if m.showHelp {
		return body + "\n" + m.renderHelp()
	}
	return body
}
