package core

import "time"

// Record is a single accepted log call as delivered to sinks.
// Records are shared between sinks and must not be modified.
type Record struct {
	// Timestamp is when the record was accepted by the logger.
	Timestamp time.Time

	// Level is the severity the record was logged at.
	Level Level

	// Process is the process definition name.
	Process string

	// ID is the process instance identifier, a string or a number.
	ID any

	// Description is the human readable description of the event.
	Description string

	// Data is the optional structured payload. Nil means no payload.
	Data any

	// Message is the serialized structured form of the record:
	// {"process":...,"id":...,"description":...,"data":...}.
	Message string
}

// HasData reports whether the record carries a payload.
func (r *Record) HasData() bool {
	return !IsAbsent(r.Data)
}
