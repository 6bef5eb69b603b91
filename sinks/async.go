package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// ErrSinkClosed is returned when a record is emitted to a closed sink.
var ErrSinkClosed = errors.New("sink closed")

// AsyncOptions configures the async sink wrapper.
type AsyncOptions struct {
	// BufferSize is the size of the channel buffer for records.
	BufferSize int

	// OverflowStrategy defines what to do when the buffer is full.
	OverflowStrategy OverflowStrategy

	// OnError is called from the background worker when the wrapped sink
	// fails or panics. Defaults to reporting through selflog.
	OnError func(error)

	// ShutdownTimeout is the maximum time to wait for pending records during shutdown.
	ShutdownTimeout time.Duration
}

// OverflowStrategy defines what to do when the async buffer is full.
type OverflowStrategy int

const (
	// OverflowBlock blocks the caller until space is available.
	OverflowBlock OverflowStrategy = iota

	// OverflowDrop drops the newest records when the buffer is full.
	OverflowDrop

	// OverflowDropOldest drops the oldest records to make room for new ones.
	OverflowDropOldest
)

// ParseOverflowStrategy parses "block", "drop" or "dropOldest".
func ParseOverflowStrategy(s string) (OverflowStrategy, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s)) {
	case "block":
		return OverflowBlock, nil
	case "drop", "dropnewest":
		return OverflowDrop, nil
	case "", "dropoldest":
		return OverflowDropOldest, nil
	}
	return OverflowBlock, errors.Errorf("unknown overflow strategy %q", s)
}

// AsyncSink wraps another sink so that Emit hands the record to a
// background worker and returns without waiting for I/O.
type AsyncSink struct {
	wrapped core.Sink
	options AsyncOptions
	records chan *core.Record
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once

	// pending counts records accepted by Emit and not yet handed to the
	// wrapped sink.
	pending atomic.Int64

	dropped   atomic.Uint64
	processed atomic.Uint64
	errors    atomic.Uint64
}

// NewAsyncSink creates a new async sink wrapper and starts its worker.
func NewAsyncSink(wrapped core.Sink, options AsyncOptions) *AsyncSink {
	if options.BufferSize <= 0 {
		options.BufferSize = 1000
	}
	if options.ShutdownTimeout <= 0 {
		options.ShutdownTimeout = 30 * time.Second
	}
	if options.OnError == nil {
		options.OnError = func(err error) {
			selflog.Report("async", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	sink := &AsyncSink{
		wrapped: wrapped,
		options: options,
		records: make(chan *core.Record, options.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	sink.wg.Add(1)
	go sink.worker()

	return sink
}

// Name returns a printable name for diagnostics.
func (as *AsyncSink) Name() string {
	return "async(" + core.SinkName(as.wrapped) + ")"
}

// Wrapped returns the sink records are forwarded to.
func (as *AsyncSink) Wrapped() core.Sink {
	return as.wrapped
}

// Emit queues the record for the background worker.
func (as *AsyncSink) Emit(record *core.Record) error {
	if as.closed.Load() {
		return ErrSinkClosed
	}

	as.pending.Inc()
	select {
	case as.records <- record:
		return nil
	default:
	}

	switch as.options.OverflowStrategy {
	case OverflowBlock:
		select {
		case as.records <- record:
			return nil
		case <-as.ctx.Done():
			as.drop()
			return ErrSinkClosed
		}

	case OverflowDropOldest:
		select {
		case <-as.records:
			as.drop()
		default:
		}
		select {
		case as.records <- record:
		default:
			as.drop()
		}

	default:
		as.drop()
	}
	return nil
}

// drop accounts for a record that will never reach the wrapped sink.
func (as *AsyncSink) drop() {
	as.pending.Dec()
	dropped := as.dropped.Inc()
	if selflog.IsEnabled() && (dropped == 1 || dropped%1000 == 0) {
		selflog.Printf("[async] %s buffer full, dropped %d records total", core.SinkName(as.wrapped), dropped)
	}
}

// Flush blocks until every queued record has been handed to the wrapped
// sink or the context is done.
func (as *AsyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for as.pending.Load() > 0 && !as.closed.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close shuts down the worker after draining pending records and closes
// the wrapped sink.
func (as *AsyncSink) Close() error {
	var err error
	as.once.Do(func() {
		as.closed.Store(true)
		as.cancel()

		done := make(chan struct{})
		go func() {
			as.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(as.options.ShutdownTimeout):
			err = fmt.Errorf("timeout waiting for async sink %s to shut down", core.SinkName(as.wrapped))
			return
		}

		err = as.wrapped.Close()
	})
	return err
}

// worker is the background goroutine that processes records.
func (as *AsyncSink) worker() {
	defer as.wg.Done()

	for {
		select {
		case record := <-as.records:
			as.emitSingle(record)

		case <-as.ctx.Done():
			for {
				select {
				case record := <-as.records:
					as.emitSingle(record)
				default:
					return
				}
			}
		}
	}
}

// emitSingle emits a single record to the wrapped sink.
func (as *AsyncSink) emitSingle(record *core.Record) {
	defer as.pending.Dec()
	defer func() {
		if r := recover(); r != nil {
			as.errors.Inc()
			as.options.OnError(&core.SinkWriteError{
				Sink:  core.SinkName(as.wrapped),
				Level: record.Level,
				Err:   fmt.Errorf("panic: %v", r),
			})
		}
	}()

	if err := as.wrapped.Emit(record); err != nil {
		as.errors.Inc()
		as.options.OnError(&core.SinkWriteError{
			Sink:  core.SinkName(as.wrapped),
			Level: record.Level,
			Err:   err,
		})
		return
	}
	as.processed.Inc()
}

// GetMetrics returns metrics about the async sink operation.
func (as *AsyncSink) GetMetrics() AsyncMetrics {
	return AsyncMetrics{
		Processed:  as.processed.Load(),
		Dropped:    as.dropped.Load(),
		Errors:     as.errors.Load(),
		BufferSize: len(as.records),
		BufferCap:  cap(as.records),
	}
}

// AsyncMetrics contains operational metrics for the async sink.
type AsyncMetrics struct {
	Processed  uint64 // Number of records successfully processed
	Dropped    uint64 // Number of records dropped due to overflow
	Errors     uint64 // Number of failed or panicking writes
	BufferSize int    // Current number of records in buffer
	BufferCap  int    // Buffer capacity
}
