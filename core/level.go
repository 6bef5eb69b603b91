package core

import (
	"strings"

	"github.com/pkg/errors"
)

// Level specifies the severity of a log record.
// The order is fixed: a record is emitted when its level is at least the
// threshold of the logger and the minimum level of the sink.
type Level int

const (
	// SillyLevel is the most detailed level.
	SillyLevel Level = iota

	// VerboseLevel is for verbose diagnostics.
	VerboseLevel

	// InfoLevel is for informational messages.
	InfoLevel

	// WarnLevel is for warnings.
	WarnLevel

	// DebugLevel is for engine debugging such as token movement.
	DebugLevel

	// TraceLevel is for tracing handler calls and message passing.
	TraceLevel

	// ErrorLevel is for errors.
	ErrorLevel

	// NoneLevel is only usable as a threshold and suppresses everything.
	NoneLevel
)

// UnknownLevelName is rendered for ordinals that have no level.
const UnknownLevelName = "unknown"

// ErrUnknownLevel is returned when a level name has no mapping.
var ErrUnknownLevel = errors.New("unknown log level")

var levelNames = [...]string{
	SillyLevel:   "silly",
	VerboseLevel: "verbose",
	InfoLevel:    "info",
	WarnLevel:    "warn",
	DebugLevel:   "debug",
	TraceLevel:   "trace",
	ErrorLevel:   "error",
	NoneLevel:    "none",
}

// Levels returns every level a record can be logged at, lowest first.
func Levels() []Level {
	return []Level{SillyLevel, VerboseLevel, InfoLevel, WarnLevel, DebugLevel, TraceLevel, ErrorLevel}
}

// String returns the canonical name of the level, or "unknown".
func (l Level) String() string {
	if !l.IsValid() {
		return UnknownLevelName
	}
	return levelNames[l]
}

// IsValid reports whether l is one of the defined levels, including NoneLevel.
func (l Level) IsValid() bool {
	return l >= SillyLevel && l <= NoneLevel
}

// Loggable reports whether a record may be logged at l.
func (l Level) Loggable() bool {
	return l >= SillyLevel && l < NoneLevel
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLevel returns the level with the given name. Names are matched
// case-insensitively; "warning" is accepted as an alias of "warn".
func ParseLevel(name string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "warning" {
		return WarnLevel, nil
	}
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return NoneLevel, errors.Wrapf(ErrUnknownLevel, "%q", name)
}
