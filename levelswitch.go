package proclog

import (
	"go.uber.org/atomic"

	"github.com/willibrandon/proclog/core"
)

// LevelSwitch provides thread-safe, runtime control of a threshold.
// One switch can be shared by many loggers to change all their thresholds
// at once.
type LevelSwitch struct {
	level atomic.Int32
}

// NewLevelSwitch creates a level switch with the specified initial threshold.
func NewLevelSwitch(initialLevel core.Level) *LevelSwitch {
	ls := &LevelSwitch{}
	ls.SetLevel(initialLevel)
	return ls
}

// Level returns the current threshold.
func (ls *LevelSwitch) Level() core.Level {
	return core.Level(ls.level.Load())
}

// SetLevel updates the threshold. It takes effect immediately.
func (ls *LevelSwitch) SetLevel(level core.Level) {
	ls.level.Store(int32(level))
}

// SetLevelName parses name and updates the threshold. An unknown name
// leaves the threshold unchanged.
func (ls *LevelSwitch) SetLevelName(name string) error {
	level, err := core.ParseLevel(name)
	if err != nil {
		return err
	}
	ls.SetLevel(level)
	return nil
}

// IsEnabled reports whether a record at level passes the threshold.
func (ls *LevelSwitch) IsEnabled(level core.Level) bool {
	return level.Loggable() && level >= ls.Level()
}

// Silly sets the threshold to silly, letting everything through.
func (ls *LevelSwitch) Silly() *LevelSwitch {
	ls.SetLevel(core.SillyLevel)
	return ls
}

// Verbose sets the threshold to verbose.
func (ls *LevelSwitch) Verbose() *LevelSwitch {
	ls.SetLevel(core.VerboseLevel)
	return ls
}

// Info sets the threshold to info.
func (ls *LevelSwitch) Info() *LevelSwitch {
	ls.SetLevel(core.InfoLevel)
	return ls
}

// Warn sets the threshold to warn.
func (ls *LevelSwitch) Warn() *LevelSwitch {
	ls.SetLevel(core.WarnLevel)
	return ls
}

// Debug sets the threshold to debug.
func (ls *LevelSwitch) Debug() *LevelSwitch {
	ls.SetLevel(core.DebugLevel)
	return ls
}

// Trace sets the threshold to trace.
func (ls *LevelSwitch) Trace() *LevelSwitch {
	ls.SetLevel(core.TraceLevel)
	return ls
}

// Error sets the threshold to error.
func (ls *LevelSwitch) Error() *LevelSwitch {
	ls.SetLevel(core.ErrorLevel)
	return ls
}

// None sets the threshold to none, suppressing every record.
func (ls *LevelSwitch) None() *LevelSwitch {
	ls.SetLevel(core.NoneLevel)
	return ls
}
