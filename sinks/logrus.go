package sinks

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/willibrandon/proclog/core"
)

// LogrusSink forwards records to a logrus logger, for hosts that already
// collect their logs through logrus.
type LogrusSink struct {
	logger *logrus.Logger
}

// NewLogrusSink creates a sink writing to logger. The logger's own level
// applies on top of the sink's minimum level.
func NewLogrusSink(logger *logrus.Logger) *LogrusSink {
	return &LogrusSink{logger: logger}
}

// NewLogrusSinkWithWriter creates a logrus logger writing text lines to w
// at trace level and wraps it.
func NewLogrusSinkWithWriter(w io.Writer) *LogrusSink {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.TraceLevel)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	return NewLogrusSink(l)
}

// Name returns a printable name for diagnostics.
func (s *LogrusSink) Name() string {
	return "logrus"
}

// Logger returns the wrapped logrus logger.
func (s *LogrusSink) Logger() *logrus.Logger {
	return s.logger
}

// Emit logs the record description with the process fields attached.
// logrus reports its own write failures, so Emit never fails.
func (s *LogrusSink) Emit(record *core.Record) error {
	fields := logrus.Fields{
		"process": record.Process,
		"id":      record.ID,
	}
	if record.HasData() {
		fields["data"] = record.Data
	}

	s.logger.WithFields(fields).WithTime(record.Timestamp).Log(logrusLevel(record.Level), record.Description)
	return nil
}

// Close implements core.Sink. The logrus logger is owned by the caller.
func (s *LogrusSink) Close() error {
	return nil
}

// logrusLevel maps each level to the logrus level of the same name, or
// the nearest one logrus has.
func logrusLevel(level core.Level) logrus.Level {
	switch level {
	case core.SillyLevel, core.TraceLevel:
		return logrus.TraceLevel
	case core.VerboseLevel, core.DebugLevel:
		return logrus.DebugLevel
	case core.InfoLevel:
		return logrus.InfoLevel
	case core.WarnLevel:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}
