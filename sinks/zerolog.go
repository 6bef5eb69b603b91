package sinks

import (
	"github.com/rs/zerolog"

	"github.com/willibrandon/proclog/core"
)

// ZerologSink forwards records to a zerolog logger.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink creates a sink writing to logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Name returns a printable name for diagnostics.
func (s *ZerologSink) Name() string {
	return "zerolog"
}

// Emit logs the record description with the process fields attached.
// Write failures go to zerolog.ErrorHandler.
func (s *ZerologSink) Emit(record *core.Record) error {
	ev := s.logger.WithLevel(zerologLevel(record.Level)).
		Time("time", record.Timestamp).
		Str("process", record.Process).
		Interface("id", record.ID)
	if record.HasData() {
		ev = ev.Interface("data", record.Data)
	}
	ev.Msg(record.Description)
	return nil
}

// Close implements core.Sink. The writer is owned by the caller.
func (s *ZerologSink) Close() error {
	return nil
}

func zerologLevel(level core.Level) zerolog.Level {
	switch level {
	case core.SillyLevel, core.TraceLevel:
		return zerolog.TraceLevel
	case core.VerboseLevel, core.DebugLevel:
		return zerolog.DebugLevel
	case core.InfoLevel:
		return zerolog.InfoLevel
	case core.WarnLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
