package sinks

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// SinkConfig describes how a sink takes part in a registry.
type SinkConfig struct {
	// Kind tags the sink. Console and file kinds replace any existing sink
	// of the same kind; custom sinks always append.
	Kind core.SinkKind

	// MinLevel is the lowest level the sink receives.
	MinLevel core.Level
}

// Entry is a registered sink together with its configuration.
type Entry struct {
	Sink core.Sink
	SinkConfig
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithErrorHandler sets the function receiving aggregated write failures.
// The default reports them through selflog.
func WithErrorHandler(handler func(error)) RegistryOption {
	return func(r *Registry) {
		if handler != nil {
			r.onError = handler
		}
	}
}

// Registry holds the set of sinks records are fanned out to.
// Mutations copy the entry slice, so Write never holds the lock while
// calling into a sink.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	onError func(error)
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		onError: func(err error) {
			selflog.Report("registry", err)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a sink. Adding a console or file sink first removes and
// closes the sink of that kind already registered.
func (r *Registry) Add(sink core.Sink, cfg SinkConfig) {
	if sink == nil {
		return
	}

	var replaced core.Sink

	r.mu.Lock()
	entries := make([]Entry, 0, len(r.entries)+1)
	for _, e := range r.entries {
		if cfg.Kind.Builtin() && e.Kind == cfg.Kind {
			replaced = e.Sink
			continue
		}
		entries = append(entries, e)
	}
	entries = append(entries, Entry{Sink: sink, SinkConfig: cfg})
	r.entries = entries
	r.mu.Unlock()

	if replaced != nil && replaced != sink {
		r.closeSink(replaced, cfg.Kind)
	}
}

// Remove detaches and closes the given sink. It reports whether the sink
// was registered.
func (r *Registry) Remove(sink core.Sink) bool {
	return r.remove(func(e Entry) bool { return e.Sink == sink })
}

// RemoveKind detaches and closes every sink of the given kind.
func (r *Registry) RemoveKind(kind core.SinkKind) bool {
	return r.remove(func(e Entry) bool { return e.Kind == kind })
}

func (r *Registry) remove(match func(Entry) bool) bool {
	var removed []Entry

	r.mu.Lock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if match(e) {
			removed = append(removed, e)
			continue
		}
		entries = append(entries, e)
	}
	r.entries = entries
	r.mu.Unlock()

	for _, e := range removed {
		r.closeSink(e.Sink, e.Kind)
	}
	return len(removed) > 0
}

func (r *Registry) closeSink(sink core.Sink, kind core.SinkKind) {
	if err := sink.Close(); err != nil {
		r.onError(errors.Wrapf(err, "close %s sink %s", kind, core.SinkName(sink)))
	}
}

// Write delivers the record to every sink whose minimum level it meets, in
// registration order. A failing or panicking sink never prevents delivery
// to the others; failures are aggregated and passed to the error handler.
func (r *Registry) Write(record *core.Record) {
	r.mu.Lock()
	entries := r.entries
	r.mu.Unlock()

	var result *multierror.Error
	for _, e := range entries {
		if record.Level < e.MinLevel {
			continue
		}
		if err := emit(e, record); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		r.onError(err)
	}
}

// emit calls the sink, turning a panic into an error.
func emit(e Entry, record *core.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &core.SinkWriteError{
				Kind:  e.Kind,
				Sink:  core.SinkName(e.Sink),
				Level: record.Level,
				Err:   fmt.Errorf("panic: %v", p),
			}
		}
	}()

	if werr := e.Sink.Emit(record); werr != nil {
		return &core.SinkWriteError{
			Kind:  e.Kind,
			Sink:  core.SinkName(e.Sink),
			Level: record.Level,
			Err:   werr,
		}
	}
	return nil
}

// Sinks returns a snapshot of the registered entries.
func (r *Registry) Sinks() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Len returns the number of registered sinks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close detaches every sink and closes them concurrently.
func (r *Registry) Close() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	var (
		g      errgroup.Group
		mu     sync.Mutex
		result *multierror.Error
	)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			if err := e.Sink.Close(); err != nil {
				mu.Lock()
				result = multierror.Append(result, errors.Wrapf(err, "close %s sink %s", e.Kind, core.SinkName(e.Sink)))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result.ErrorOrNil()
}
