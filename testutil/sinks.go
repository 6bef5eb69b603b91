package testutil

import (
	"errors"
	"sync"

	"go.uber.org/atomic"

	"github.com/willibrandon/proclog/core"
)

// ErrSinkFailed is returned by FailingSink.
var ErrSinkFailed = errors.New("sink failed")

// FailingSink fails every write, or panics when Panic is set.
type FailingSink struct {
	Panic  bool
	calls  atomic.Int64
	closed atomic.Bool
}

// Name returns a printable name for diagnostics.
func (s *FailingSink) Name() string { return "failing" }

// Emit implements core.Sink.
func (s *FailingSink) Emit(*core.Record) error {
	s.calls.Inc()
	if s.Panic {
		panic("failing sink")
	}
	return ErrSinkFailed
}

// Close implements core.Sink.
func (s *FailingSink) Close() error {
	s.closed.Store(true)
	return nil
}

// Calls returns the number of Emit calls.
func (s *FailingSink) Calls() int64 { return s.calls.Load() }

// Closed reports whether Close has been called.
func (s *FailingSink) Closed() bool { return s.closed.Load() }

// ErrorCollector gathers errors passed to an error handler.
type ErrorCollector struct {
	mu   sync.Mutex
	errs []error
}

// Handle records err. Its signature matches registry error handlers.
func (c *ErrorCollector) Handle(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns a copy of the collected errors.
func (c *ErrorCollector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]error, len(c.errs))
	copy(result, c.errs)
	return result
}

// Len returns the number of collected errors.
func (c *ErrorCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// LineCollector is a raw appender that keeps every line it receives.
type LineCollector struct {
	mu    sync.Mutex
	lines []string
}

// Append records line. Its signature matches raw appenders.
func (c *LineCollector) Append(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the collected lines.
func (c *LineCollector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.lines))
	copy(result, c.lines)
	return result
}
