package sinks

import (
	"fmt"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// Predicate selects records.
type Predicate func(*core.Record) bool

// ConditionalSink forwards only the records matching a predicate to its
// target, e.g. to give one process definition its own destination.
type ConditionalSink struct {
	predicate Predicate
	target    core.Sink
	name      string
}

// NewConditionalSink creates a sink that only forwards records matching
// the predicate.
func NewConditionalSink(predicate Predicate, target core.Sink) *ConditionalSink {
	if predicate == nil {
		panic("predicate cannot be nil")
	}
	if target == nil {
		panic("target sink cannot be nil")
	}

	return &ConditionalSink{
		predicate: predicate,
		target:    target,
	}
}

// NewNamedConditionalSink creates a named conditional sink for diagnostics.
func NewNamedConditionalSink(name string, predicate Predicate, target core.Sink) *ConditionalSink {
	sink := NewConditionalSink(predicate, target)
	sink.name = name
	return sink
}

// Name returns a printable name for diagnostics.
func (s *ConditionalSink) Name() string {
	if s.name != "" {
		return s.name
	}
	return "conditional(" + core.SinkName(s.target) + ")"
}

// Emit forwards the record if the predicate accepts it. A panicking
// predicate drops the record.
func (s *ConditionalSink) Emit(record *core.Record) error {
	if record == nil || !s.matches(record) {
		return nil
	}
	return s.target.Emit(record)
}

func (s *ConditionalSink) matches(record *core.Record) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			selflog.Printf("[conditional] %s predicate panic: %v", s.Name(), r)
			ok = false
		}
	}()
	return s.predicate(record)
}

// Close closes the target sink.
func (s *ConditionalSink) Close() error {
	return s.target.Close()
}

// LevelPredicate matches records at or above minLevel.
func LevelPredicate(minLevel core.Level) Predicate {
	return func(r *core.Record) bool {
		return r.Level >= minLevel
	}
}

// ProcessPredicate matches records of the named process definitions.
func ProcessPredicate(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(r *core.Record) bool {
		_, ok := set[r.Process]
		return ok
	}
}

// InstancePredicate matches records of one process instance. Ids are
// compared by their printed form, so 7 and "7" are the same instance.
func InstancePredicate(id any) Predicate {
	want := fmt.Sprint(id)
	return func(r *core.Record) bool {
		return fmt.Sprint(r.ID) == want
	}
}

// HasDataPredicate matches records carrying a payload.
func HasDataPredicate() Predicate {
	return func(r *core.Record) bool {
		return r.HasData()
	}
}

// AndPredicate combines predicates with AND logic.
func AndPredicate(predicates ...Predicate) Predicate {
	return func(r *core.Record) bool {
		for _, p := range predicates {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// OrPredicate combines predicates with OR logic.
func OrPredicate(predicates ...Predicate) Predicate {
	return func(r *core.Record) bool {
		for _, p := range predicates {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// NotPredicate inverts a predicate.
func NotPredicate(predicate Predicate) Predicate {
	return func(r *core.Record) bool {
		return !predicate(r)
	}
}
