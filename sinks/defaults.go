package sinks

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// ColorMode selects whether console output is colorized.
type ColorMode int

const (
	// ColorAuto colorizes when stdout is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways colorizes regardless of the output.
	ColorAlways
	// ColorNever disables colors.
	ColorNever
)

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always", "on", "true":
		return ColorAlways, nil
	case "never", "off", "false":
		return ColorNever, nil
	}
	return ColorAuto, errors.Errorf("unknown color mode %q", s)
}

// DefaultOptions configures the sinks of NewDefaultRegistry.
type DefaultOptions struct {
	// DisableConsole skips the console sink.
	DisableConsole bool

	// ConsoleMinLevel is the lowest level printed on the console.
	ConsoleMinLevel core.Level

	// Theme of the console sink. Defaults to DefaultTheme.
	Theme *ConsoleTheme

	// Color overrides terminal detection for the console sink.
	Color ColorMode

	// DisableFile skips the file sink.
	DisableFile bool

	// FileMinLevel is the lowest level written to the file.
	FileMinLevel core.Level

	// File configures the rolling file sink.
	File RollingFileOptions

	// Async configures the wrapper put around both sinks.
	Async AsyncOptions

	// ErrorHandler receives write failures. Defaults to selflog.
	ErrorHandler func(error)
}

// NewDefaultOptions returns the built-in sink policy: console from silly,
// ./process.log from verbose, rolled above 64 MiB with 100 files kept.
// Neither sink ever blocks the caller.
func NewDefaultOptions() DefaultOptions {
	return DefaultOptions{
		ConsoleMinLevel: core.SillyLevel,
		FileMinLevel:    core.VerboseLevel,
		File:            DefaultRollingFileOptions(),
		Async: AsyncOptions{
			OverflowStrategy: OverflowDropOldest,
		},
	}
}

// NewDefaultRegistry builds a registry holding the console and file sinks
// described by opts. A file that cannot be opened is reported to selflog
// and the registry is returned without a file sink.
func NewDefaultRegistry(opts DefaultOptions) *Registry {
	r, err := BuildDefaultRegistry(opts)
	if err != nil {
		selflog.Printf("[registry] file sink disabled: %v", err)
	}
	return r
}

// BuildDefaultRegistry is like NewDefaultRegistry but returns the error
// opening the file sink. The returned registry is usable either way.
func BuildDefaultRegistry(opts DefaultOptions) (*Registry, error) {
	var regOpts []RegistryOption
	if opts.ErrorHandler != nil {
		regOpts = append(regOpts, WithErrorHandler(opts.ErrorHandler))
	}
	r := NewRegistry(regOpts...)

	asyncOpts := opts.Async
	if asyncOpts.OnError == nil {
		asyncOpts.OnError = r.onError
	}

	if !opts.DisableConsole {
		theme := opts.Theme
		if theme == nil {
			theme = DefaultTheme()
		}
		console := NewConsoleSinkWithTheme(theme)
		switch opts.Color {
		case ColorAlways:
			console.SetUseColor(theme.HasColors())
		case ColorNever:
			console.SetUseColor(false)
		}
		r.Add(NewAsyncSink(console, asyncOpts), SinkConfig{
			Kind:     core.KindConsole,
			MinLevel: opts.ConsoleMinLevel,
		})
	}

	if !opts.DisableFile {
		file, err := NewRollingFileSink(opts.File)
		if err != nil {
			return r, errors.Wrap(err, "file sink")
		}
		r.Add(NewAsyncSink(file, asyncOpts), SinkConfig{
			Kind:     core.KindFile,
			MinLevel: opts.FileMinLevel,
		})
	}

	return r, nil
}
