package core

import (
	"fmt"
	"reflect"
)

// SinkWriteError is reported when a sink failed to write a record.
type SinkWriteError struct {
	Kind  SinkKind
	Sink  string
	Level Level
	Err   error
}

// Error implements the error interface.
func (e *SinkWriteError) Error() string {
	if e.Kind.Builtin() {
		return fmt.Sprintf("%s sink %s: write %s record: %v", e.Kind, e.Sink, e.Level, e.Err)
	}
	return fmt.Sprintf("sink %s: write %s record: %v", e.Sink, e.Level, e.Err)
}

// Cause returns the underlying write error.
func (e *SinkWriteError) Cause() error { return e.Err }

// Unwrap returns the underlying write error.
func (e *SinkWriteError) Unwrap() error { return e.Err }

// FormatError is reported when a payload could not be rendered and a
// plain-string fallback was used instead.
type FormatError struct {
	Payload string
	Err     error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("format payload of type %s: %v", e.Payload, e.Err)
}

// Cause returns the underlying encoding error.
func (e *FormatError) Cause() error { return e.Err }

// Unwrap returns the underlying encoding error.
func (e *FormatError) Unwrap() error { return e.Err }

// IsAbsent reports whether a payload counts as not supplied: an untyped
// nil or a nil pointer, map, slice, interface, func or channel.
func IsAbsent(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// SinkName returns a printable name for a sink, used in diagnostics.
func SinkName(s Sink) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
