// Command shifter is a DVR-style time-shift player for macOS virtual audio
// devices: it captures from a loopback/virtual input (e.g. BlackHole) into a
// ring buffer and plays it back to a physical output with an adjustable
// delay, so the listener can pause, rewind, and resume a live audio stream.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xesco/osx-shifter/internal/audio"
	"github.com/xesco/osx-shifter/internal/cliconfig"
	"github.com/xesco/osx-shifter/internal/tui"
	"github.com/xesco/osx-shifter/portaudio"
)

var version = "dev"

func main() {
	cfg := cliconfig.Parse(version)

	if err := portaudio.Initialize(); err != nil {
		cliconfig.PrintError(fmt.Sprintf("failed to initialize audio: %v", err))
		os.Exit(1)
	}
	defer portaudio.Terminate()

	if cfg.ListDevices {
		if err := audio.ListDevices(os.Stdout, cfg.InputDevice); err != nil {
			cliconfig.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	engine, err := audio.New(audio.Config{
		InputDevice:   cfg.InputDevice,
		OutputDevice:  cfg.OutputDevice,
		BufferSeconds: cfg.BufferSeconds,
		LatencyMs:     cfg.BaseDelayMs,
	})
	if err != nil {
		cliconfig.PrintError(err.Error())
		os.Exit(1)
	}
	defer engine.Close()

	cliconfig.PrintBanner(engine.InputDeviceName, engine.OutputDeviceName, int(engine.Channels), engine.SampleRate, cfg.BufferSeconds)

	model := tui.New(engine, cfg.BufferSeconds)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		cliconfig.PrintError(fmt.Sprintf("tui error: %v", err))
		os.Exit(1)
	}
}
