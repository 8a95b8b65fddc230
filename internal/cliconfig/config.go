// Package cliconfig defines Shifter's command-line surface (§6) and its
// themed kong help output.
package cliconfig

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Config is the parsed command-line configuration.
type Config struct {
	InputDevice   string  `short:"i" help:"Input device name substring match." default:"BlackHole"`
	OutputDevice  string  `short:"o" help:"Output device name substring match (default: system output)."`
	BufferSeconds float64 `short:"b" help:"Ring buffer capacity, in seconds." default:"60"`
	BaseDelayMs   float64 `short:"d" help:"Initial base delay, in milliseconds." default:"0"`
	ListDevices   bool    `short:"l" help:"List available audio devices and exit."`
}

// Parse parses os.Args into a Config using the themed help printer, exiting
// the process on -h/--help or a parse error (kong's standard behavior).
func Parse(version string) *Config {
	var cfg Config
	kong.Parse(&cfg,
		kong.Name("osx-shifter"),
		kong.Description("Time-shifted DVR playback for macOS virtual audio devices."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	return &cfg
}

// PrintError writes a themed error line to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+msg)
}

// PrintBanner writes the startup banner §12 describes, summarizing the
// resolved device pair and stream format.
func PrintBanner(inputName, outputName string, channels int, sampleRate uint32, bufferSeconds float64) {
	fmt.Fprintf(os.Stderr, "osx-shifter: %s -> %s (%dch, %dHz, %.0fs buffer)\n",
		inputName, outputName, channels, sampleRate, bufferSeconds)
}
