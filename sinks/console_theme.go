package sinks

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/willibrandon/proclog/core"
)

// ConsoleTheme defines the colors and layout of console output.
// Colors are cosmetic only; they never take part in filtering.
type ConsoleTheme struct {
	// LevelColors holds the attributes used to paint each level name.
	LevelColors map[core.Level][]color.Attribute

	// Element colors
	TimestampColor []color.Attribute
	MessageColor   []color.Attribute

	// Formatting
	LevelFormat     string // Format string for the level name, e.g. "%s:" or "[%s]"
	TimestampFormat string // Time layout; empty disables the timestamp
}

// DefaultTheme paints level names the way the process engine always has:
// silly yellow, verbose blue, info green, warn orange, debug black,
// trace grey and error red.
func DefaultTheme() *ConsoleTheme {
	return &ConsoleTheme{
		LevelColors: map[core.Level][]color.Attribute{
			core.SillyLevel:   {color.FgYellow},
			core.VerboseLevel: {color.FgBlue},
			core.InfoLevel:    {color.FgGreen},
			core.WarnLevel:    {color.FgHiYellow},
			core.DebugLevel:   {color.FgBlack},
			core.TraceLevel:   {color.FgHiBlack},
			core.ErrorLevel:   {color.FgRed},
		},
		LevelFormat: "%s:",
	}
}

// DevTheme adds timestamps and bolder colors.
func DevTheme() *ConsoleTheme {
	return &ConsoleTheme{
		LevelColors: map[core.Level][]color.Attribute{
			core.SillyLevel:   {color.FgMagenta},
			core.VerboseLevel: {color.FgHiBlue},
			core.InfoLevel:    {color.FgHiGreen},
			core.WarnLevel:    {color.FgHiYellow, color.Bold},
			core.DebugLevel:   {color.FgCyan},
			core.TraceLevel:   {color.FgHiBlack},
			core.ErrorLevel:   {color.FgHiRed, color.Bold},
		},
		TimestampColor:  []color.Attribute{color.FgHiCyan},
		LevelFormat:     "[%-7s]",
		TimestampFormat: "2006-01-02 15:04:05.000",
	}
}

// NoColorTheme returns a theme without any colors.
func NoColorTheme() *ConsoleTheme {
	return &ConsoleTheme{
		LevelColors: map[core.Level][]color.Attribute{},
		LevelFormat: "%s:",
	}
}

// ThemeByName returns the theme with the given name, or DefaultTheme.
func ThemeByName(name string) *ConsoleTheme {
	switch strings.ToLower(name) {
	case "dev":
		return DevTheme()
	case "nocolor", "none", "plain":
		return NoColorTheme()
	default:
		return DefaultTheme()
	}
}

// HasColors reports whether the theme paints anything at all.
func (t *ConsoleTheme) HasColors() bool {
	for _, attrs := range t.LevelColors {
		if len(attrs) > 0 {
			return true
		}
	}
	return len(t.TimestampColor) > 0 || len(t.MessageColor) > 0
}

// paint applies attrs to s when useColor is set.
func paint(s string, attrs []color.Attribute, useColor bool) string {
	if !useColor || len(attrs) == 0 {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// shouldUseColor determines if color output should be used for w.
func shouldUseColor(w io.Writer) bool {
	if forceColor := os.Getenv("PROCLOG_FORCE_COLOR"); forceColor != "" {
		switch strings.ToLower(forceColor) {
		case "none", "0", "false", "off":
			return false
		case "1", "true", "on":
			return true
		}
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
