package sinks

import (
	"sync"

	"github.com/willibrandon/proclog/core"
)

// MemorySink stores records in memory for testing purposes.
type MemorySink struct {
	records []core.Record
	closed  bool
	mu      sync.RWMutex
}

// NewMemorySink creates a new memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		records: make([]core.Record, 0),
	}
}

// Emit stores a copy of the record.
func (m *MemorySink) Emit(record *core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

// Close marks the sink as closed. Records are kept.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemorySink) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Records returns a copy of all stored records.
func (m *MemorySink) Records() []core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Record, len(m.records))
	copy(result, m.records)
	return result
}

// Messages returns the structured messages of all stored records.
func (m *MemorySink) Messages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.records))
	for i := range m.records {
		result[i] = m.records[i].Message
	}
	return result
}

// Clear removes all stored records.
func (m *MemorySink) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = m.records[:0]
}

// Count returns the number of stored records.
func (m *MemorySink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// FindRecords returns records that match the given predicate.
func (m *MemorySink) FindRecords(predicate func(*core.Record) bool) []core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Record
	for i := range m.records {
		if predicate(&m.records[i]) {
			result = append(result, m.records[i])
		}
	}
	return result
}

// LastRecord returns the most recent record, or nil if there is none.
func (m *MemorySink) LastRecord() *core.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return nil
	}
	record := m.records[len(m.records)-1]
	return &record
}
