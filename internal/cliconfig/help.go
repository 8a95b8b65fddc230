package cliconfig

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
)

// StyledHelpPrinter renders kong's generated help text through the package's
// lipgloss theme instead of kong's plain-text default.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(TitleStyle.Render("osx-shifter"))
		sb.WriteString("\n")
		sb.WriteString(SubtitleStyle.Render("Time-shifted DVR playback for macOS virtual audio devices."))
		sb.WriteString("\n")

		sb.WriteString(HeaderStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s [flags]", ctx.Model.Name))
		sb.WriteString("\n")

		flags := gatherFlags(ctx)
		if len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(HeaderStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, f := range flags {
				sb.WriteString("  ")
				sb.WriteString(FlagStyle.Render(f.flags))
				if f.help != "" {
					sb.WriteString("  ")
					sb.WriteString(f.help)
				}
				if f.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(DefaultValStyle.Render("(default: " + f.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
}

type helpFlag struct {
	flags      string
	help       string
	defaultVal string
}

func gatherFlags(ctx *kong.Context) []helpFlag {
	flags := []helpFlag{{flags: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}

		flagStr := ""
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			flagStr = fmt.Sprintf("--%s", f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		defaultVal := ""
		if f.HasDefault && !f.IsBool() {
			if val := f.Default; val != "" && val != "STRING" && val != "FLOAT64" {
				defaultVal = val
			}
		}

		flags = append(flags, helpFlag{flags: flagStr, help: f.Help, defaultVal: defaultVal})
	}

	return flags
}
