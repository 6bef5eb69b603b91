// Package proclog provides the logger owned by each running process
// instance of a workflow engine.
//
// A Logger filters calls by severity and sends each accepted call down
// exactly one of two paths: to an installed raw appender as a single
// "[level][process][id][description][data]" line, or as a structured
// record to the sinks of its registry.
package proclog

import (
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/internal/formatters"
	"github.com/willibrandon/proclog/selflog"
	"github.com/willibrandon/proclog/sinks"
)

// appenderBox lets a nil appender be stored in an atomic.Value.
type appenderBox struct {
	fn func(string)
}

// Logger is the per-process-instance logger. It is safe for concurrent use.
type Logger struct {
	ctx         core.Context
	levelSwitch *LevelSwitch
	appender    atomic.Value
	registry    *sinks.Registry
	hooks       []core.Hook
	clock       func() time.Time
}

// New creates a logger for the given process context.
// Without WithRegistry the logger writes to the shared default registry.
func New(ctx core.Context, options ...Option) *Logger {
	cfg := &config{
		level: DefaultLevel,
		clock: time.Now,
	}
	for _, opt := range options {
		opt(cfg)
	}

	levelSwitch := cfg.levelSwitch
	if levelSwitch == nil {
		levelSwitch = NewLevelSwitch(cfg.level)
	}
	registry := cfg.registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	l := &Logger{
		ctx:         ctx,
		levelSwitch: levelSwitch,
		registry:    registry,
		hooks:       cfg.hooks,
		clock:       cfg.clock,
	}
	l.SetAppender(cfg.appender)
	return l
}

// Context returns the process context the logger was created with.
func (l *Logger) Context() core.Context {
	return l.ctx
}

// Level returns the current threshold.
func (l *Logger) Level() core.Level {
	return l.levelSwitch.Level()
}

// SetLevel replaces the threshold. With a shared level switch this
// changes every logger using the switch.
func (l *Logger) SetLevel(level core.Level) {
	l.levelSwitch.SetLevel(level)
}

// IsEnabled reports whether a call at level would be emitted.
func (l *Logger) IsEnabled(level core.Level) bool {
	return l.levelSwitch.IsEnabled(level)
}

// SetAppender installs a raw appender. While one is installed, accepted
// calls are rendered as a single line and handed to it instead of the
// sinks. A nil appender clears it.
func (l *Logger) SetAppender(appender func(string)) {
	l.appender.Store(appenderBox{fn: appender})
}

// ClearAppender removes the raw appender so records go to the sinks again.
func (l *Logger) ClearAppender() {
	l.SetAppender(nil)
}

func (l *Logger) loadAppender() func(string) {
	box, _ := l.appender.Load().(appenderBox)
	return box.fn
}

// Registry returns the registry structured records are written to.
func (l *Logger) Registry() *sinks.Registry {
	return l.registry
}

// AddSink registers a sink on the logger's registry. Console and file
// kinds replace the sink of that kind already registered.
func (l *Logger) AddSink(sink core.Sink, cfg sinks.SinkConfig) {
	l.registry.Add(sink, cfg)
}

// RemoveSink detaches and closes a sink of the logger's registry.
func (l *Logger) RemoveSink(sink core.Sink) bool {
	return l.registry.Remove(sink)
}

// Log writes description at level. An optional payload may follow; more
// than one value is logged as a list.
//
// Calls below the threshold return without formatting anything. Log never
// panics and never returns an error: failures are reported to selflog.
func (l *Logger) Log(level core.Level, description string, data ...any) {
	if !l.levelSwitch.IsEnabled(level) {
		return
	}

	var payload any
	switch len(data) {
	case 0:
	case 1:
		payload = data[0]
	default:
		payload = data
	}

	record := &core.Record{
		Timestamp:   l.clock(),
		Level:       level,
		Process:     l.ctx.DefinitionName(),
		ID:          l.ctx.InstanceID(),
		Description: description,
		Data:        payload,
	}

	if appender := l.loadAppender(); appender != nil {
		line, err := formatters.RawLine(level, l.ctx, description, payload)
		if err != nil {
			selflog.Report("format", err)
		}
		record.Message = line
		l.fire(record)
		l.callAppender(appender, line)
		return
	}

	msg, err := formatters.StructuredMessage(l.ctx, description, payload)
	if err != nil {
		selflog.Report("format", err)
	}
	record.Message = msg
	l.fire(record)
	l.registry.Write(record)
}

func (l *Logger) callAppender(appender func(string), line string) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Report("appender", fmt.Errorf("panic: %v", r))
		}
	}()
	appender(line)
}

func (l *Logger) fire(record *core.Record) {
	for _, hook := range l.hooks {
		l.fireHook(hook, record)
	}
}

func (l *Logger) fireHook(hook core.Hook, record *core.Record) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Report("hook", fmt.Errorf("panic: %v", r))
		}
	}()
	if err := hook.Fire(record); err != nil {
		selflog.Report("hook", err)
	}
}

// Silly writes a silly-level record.
func (l *Logger) Silly(description string, data ...any) {
	l.Log(core.SillyLevel, description, data...)
}

// Verbose writes a verbose-level record.
func (l *Logger) Verbose(description string, data ...any) {
	l.Log(core.VerboseLevel, description, data...)
}

// Info writes an info-level record.
func (l *Logger) Info(description string, data ...any) {
	l.Log(core.InfoLevel, description, data...)
}

// Warn writes a warn-level record.
func (l *Logger) Warn(description string, data ...any) {
	l.Log(core.WarnLevel, description, data...)
}

// Debug writes a debug-level record.
func (l *Logger) Debug(description string, data ...any) {
	l.Log(core.DebugLevel, description, data...)
}

// Trace writes a trace-level record.
func (l *Logger) Trace(description string, data ...any) {
	l.Log(core.TraceLevel, description, data...)
}

// Error writes an error-level record.
func (l *Logger) Error(description string, data ...any) {
	l.Log(core.ErrorLevel, description, data...)
}
