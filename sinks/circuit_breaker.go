package sinks

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// CircuitState is the state of a circuit breaker.
type CircuitState int32

const (
	// CircuitClosed passes every record to the wrapped sink.
	CircuitClosed CircuitState = iota
	// CircuitOpen diverts records to the fallback, or drops them.
	CircuitOpen
	// CircuitHalfOpen lets records through to probe the wrapped sink.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerOptions configures a circuit breaker sink.
type CircuitBreakerOptions struct {
	Name string

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int

	// SuccessThreshold is the number of half-open successes that closes
	// the circuit again.
	SuccessThreshold int

	// ResetTimeout is how long the circuit stays open before probing.
	ResetTimeout time.Duration

	// Fallback receives records while the circuit is open.
	Fallback core.Sink

	OnStateChange func(from, to CircuitState)

	// Now is the clock, time.Now if nil.
	Now func() time.Time
}

// CircuitBreakerSink stops calling a sink that keeps failing, so a broken
// destination does not cost every log call a failed write.
type CircuitBreakerSink struct {
	wrapped core.Sink
	opts    CircuitBreakerOptions

	state        atomic.Int32
	failures     atomic.Int32
	successes    atomic.Int32
	lastFailTime atomic.Int64

	mu sync.Mutex
}

// NewCircuitBreakerSink wraps sink with 5 failures to open, 2 successes
// to close and a 30 second reset timeout.
func NewCircuitBreakerSink(wrapped core.Sink) *CircuitBreakerSink {
	return NewCircuitBreakerSinkWithOptions(wrapped, CircuitBreakerOptions{})
}

// NewCircuitBreakerSinkWithOptions wraps sink with custom options.
func NewCircuitBreakerSinkWithOptions(wrapped core.Sink, opts CircuitBreakerOptions) *CircuitBreakerSink {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 2
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 30 * time.Second
	}
	if opts.Name == "" {
		opts.Name = "circuit-breaker(" + core.SinkName(wrapped) + ")"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CircuitBreakerSink{wrapped: wrapped, opts: opts}
}

// Name returns a printable name for diagnostics.
func (cb *CircuitBreakerSink) Name() string { return cb.opts.Name }

// Emit writes through the circuit. Failures of the wrapped sink are
// returned; records dropped by an open circuit are not errors.
func (cb *CircuitBreakerSink) Emit(record *core.Record) error {
	if record == nil {
		return nil
	}

	if cb.State() == CircuitOpen {
		if !cb.shouldAttemptReset() {
			if cb.opts.Fallback != nil {
				return cb.opts.Fallback.Emit(record)
			}
			selflog.Printf("[circuit] %s dropping record, circuit open", cb.opts.Name)
			return nil
		}
		cb.transition(CircuitOpen, CircuitHalfOpen)
	}

	err := cb.attempt(record)
	if err != nil {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
	return err
}

func (cb *CircuitBreakerSink) attempt(record *core.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return cb.wrapped.Emit(record)
}

func (cb *CircuitBreakerSink) recordSuccess() {
	switch cb.State() {
	case CircuitHalfOpen:
		if int(cb.successes.Inc()) >= cb.opts.SuccessThreshold {
			cb.transition(CircuitHalfOpen, CircuitClosed)
		}
	case CircuitClosed:
		cb.failures.Store(0)
	}
}

func (cb *CircuitBreakerSink) recordFailure() {
	cb.lastFailTime.Store(cb.opts.Now().UnixNano())

	switch cb.State() {
	case CircuitClosed:
		if int(cb.failures.Inc()) >= cb.opts.FailureThreshold {
			cb.transition(CircuitClosed, CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transition(CircuitHalfOpen, CircuitOpen)
	}
}

func (cb *CircuitBreakerSink) shouldAttemptReset() bool {
	lastFail := cb.lastFailTime.Load()
	return lastFail != 0 && cb.opts.Now().Sub(time.Unix(0, lastFail)) >= cb.opts.ResetTimeout
}

// transition moves from one state to another. It is a no-op when another
// goroutine already left from.
func (cb *CircuitBreakerSink) transition(from, to CircuitState) {
	cb.mu.Lock()
	if !cb.state.CAS(int32(from), int32(to)) {
		cb.mu.Unlock()
		return
	}
	cb.failures.Store(0)
	cb.successes.Store(0)
	if to == CircuitClosed {
		cb.lastFailTime.Store(0)
	}
	cb.mu.Unlock()

	selflog.Printf("[circuit] %s %s -> %s", cb.opts.Name, from, to)
	if cb.opts.OnStateChange != nil {
		cb.opts.OnStateChange(from, to)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreakerSink) State() CircuitState {
	return CircuitState(cb.state.Load())
}

// CircuitBreakerStats is a snapshot of a circuit breaker.
type CircuitBreakerStats struct {
	State        CircuitState
	Failures     int32
	Successes    int32
	LastFailTime time.Time
}

// Stats returns a snapshot of the breaker counters.
func (cb *CircuitBreakerSink) Stats() CircuitBreakerStats {
	stats := CircuitBreakerStats{
		State:     cb.State(),
		Failures:  cb.failures.Load(),
		Successes: cb.successes.Load(),
	}
	if ns := cb.lastFailTime.Load(); ns != 0 {
		stats.LastFailTime = time.Unix(0, ns)
	}
	return stats
}

// Close closes the wrapped sink and the fallback.
func (cb *CircuitBreakerSink) Close() error {
	err := cb.wrapped.Close()
	if cb.opts.Fallback != nil {
		if ferr := cb.opts.Fallback.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
