package sinks

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"

	"github.com/willibrandon/proclog/core"
)

// ConsoleSink writes records to the console, one colorized line each:
//
//	trace: {"process":"Order","id":"42","description":"Task 'Ship' done."}
type ConsoleSink struct {
	output   io.Writer
	mu       sync.Mutex
	theme    *ConsoleTheme
	useColor bool

	// closer is the output when the sink owns it.
	closer io.Closer
}

// NewConsoleSink creates a new console sink that writes to stdout.
func NewConsoleSink() *ConsoleSink {
	return NewConsoleSinkWithTheme(DefaultTheme())
}

// NewConsoleSinkWithTheme creates a new console sink on stdout with a custom theme.
// A nil theme means DefaultTheme.
func NewConsoleSinkWithTheme(theme *ConsoleTheme) *ConsoleSink {
	if theme == nil {
		theme = DefaultTheme()
	}
	useColor := shouldUseColor(os.Stdout) && theme.HasColors()
	return &ConsoleSink{
		// colorable translates escape sequences on Windows consoles.
		output:   colorable.NewColorable(os.Stdout),
		theme:    theme,
		useColor: useColor,
	}
}

// NewConsoleSinkWithWriter creates a new console sink with a custom writer.
func NewConsoleSinkWithWriter(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		output:   w,
		theme:    DefaultTheme(),
		useColor: shouldUseColor(w),
	}
}

// NewConsoleSinkOwning creates a console sink writing to w and closing it
// on Close, e.g. for a file opened only for this sink.
func NewConsoleSinkOwning(w io.WriteCloser) *ConsoleSink {
	cs := NewConsoleSinkWithWriter(w)
	cs.closer = w
	return cs
}

// Name returns a printable name for diagnostics.
func (cs *ConsoleSink) Name() string {
	return "console"
}

// SetTheme updates the console theme. A nil theme means DefaultTheme.
func (cs *ConsoleSink) SetTheme(theme *ConsoleTheme) {
	if theme == nil {
		theme = DefaultTheme()
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.theme = theme
}

// SetUseColor enables or disables color output.
func (cs *ConsoleSink) SetUseColor(useColor bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.useColor = useColor
}

// Emit writes the record as a single line.
func (cs *ConsoleSink) Emit(record *core.Record) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	_, err := io.WriteString(cs.output, cs.formatRecord(record))
	return err
}

// Close closes the output if the sink owns it. Writes after Close return
// ErrSinkClosed in that case.
func (cs *ConsoleSink) Close() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.closer == nil {
		return nil
	}
	err := cs.closer.Close()
	cs.closer = nil
	cs.output = closedWriter{}
	return err
}

type closedWriter struct{}

func (closedWriter) Write([]byte) (int, error) { return 0, ErrSinkClosed }

// formatRecord renders "[timestamp ]<level>: <message>\n".
func (cs *ConsoleSink) formatRecord(record *core.Record) string {
	var b strings.Builder
	b.Grow(len(record.Message) + 48)

	if cs.theme.TimestampFormat != "" {
		ts := record.Timestamp.Format(cs.theme.TimestampFormat)
		b.WriteString(paint(ts, cs.theme.TimestampColor, cs.useColor))
		b.WriteByte(' ')
	}

	level := fmt.Sprintf(cs.theme.LevelFormat, record.Level.String())
	b.WriteString(paint(level, cs.theme.LevelColors[record.Level], cs.useColor))
	b.WriteByte(' ')
	b.WriteString(paint(record.Message, cs.theme.MessageColor, cs.useColor))
	b.WriteByte('\n')
	return b.String()
}
