// Package selflog is the fallback diagnostic channel of proclog.
//
// Logging must never fail the engine it serves, so sink write failures,
// payload formatting failures and appender panics are reported here instead
// of being returned to the caller. By default reports go to the standard
// error stream of the hosting process.
//
// # Usage
//
// Redirect reports to a writer:
//
//	selflog.Enable(selflog.Sync(f))
//
// Or to a callback:
//
//	selflog.EnableFunc(func(msg string) {
//	    syslog.Warning("proclog: " + msg)
//	})
//
// Silence reports entirely:
//
//	selflog.Disable()
//
// # Format
//
// Messages are formatted as:
//
//	2025-01-29T15:30:45Z [component] message details
//
// # Environment Variable
//
// PROCLOG_SELFLOG overrides the default destination on startup:
//   - "stderr" - standard error (default)
//   - "stdout" - standard output
//   - "off" - disabled
//   - "/path/to/file" - append to the specified file
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// outputWriter holds the current io.Writer (atomic pointer)
	outputWriter atomic.Pointer[io.Writer]
	// outputFunc holds the current function (atomic pointer)
	outputFunc atomic.Pointer[func(string)]
)

// Enable sends reports to the provided writer.
// The writer should be thread-safe or wrapped with Sync().
func Enable(w io.Writer) {
	if w == nil {
		return
	}
	outputFunc.Store(nil)
	outputWriter.Store(&w)
}

// EnableFunc sends reports to a callback function.
func EnableFunc(fn func(string)) {
	if fn == nil {
		return
	}
	outputWriter.Store(nil)
	outputFunc.Store(&fn)
}

// Disable drops all reports.
func Disable() {
	outputWriter.Store(nil)
	outputFunc.Store(nil)
}

// Reset restores the default destination, the standard error stream.
func Reset() {
	Enable(Sync(os.Stderr))
}

// Printf reports an internal diagnostic message.
// The format string should start with the component in square brackets,
// e.g. "[registry] write failed: %v".
func Printf(format string, args ...interface{}) {
	w := outputWriter.Load()
	fn := outputFunc.Load()
	if w == nil && fn == nil {
		return
	}

	line := time.Now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)

	if w != nil {
		fmt.Fprintln(*w, line)
	} else if fn != nil {
		(*fn)(line)
	}
}

// Report reports err on behalf of component. Nil errors are ignored.
func Report(component string, err error) {
	if err == nil {
		return
	}
	Printf("[%s] %v", component, err)
}

// IsEnabled returns true if reports are currently delivered anywhere.
// Use this to avoid formatting costs when disabled:
//
//	if selflog.IsEnabled() {
//	    selflog.Printf("[async] dropped %d records", n)
//	}
func IsEnabled() bool {
	return outputWriter.Load() != nil || outputFunc.Load() != nil
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sync wraps a writer to make it thread-safe.
func Sync(w io.Writer) io.Writer {
	if _, ok := w.(*syncWriter); ok {
		return w
	}
	return &syncWriter{w: w}
}

func init() {
	switch dest := os.Getenv("PROCLOG_SELFLOG"); dest {
	case "", "stderr":
		Reset()
	case "stdout":
		Enable(Sync(os.Stdout))
	case "off", "none":
		Disable()
	default:
		if f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			Enable(Sync(f))
		} else {
			Reset()
			Printf("[selflog] open %s: %v", dest, err)
		}
	}
}
