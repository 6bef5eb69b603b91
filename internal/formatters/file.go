package formatters

import (
	"time"

	"github.com/willibrandon/proclog/core"
)

// FileFormatter formats records as one JSON object per line:
// {"level":"trace","message":"<structured message>","timestamp":"..."}.
type FileFormatter struct {
	// TimestampLayout is the layout of the timestamp field.
	TimestampLayout string

	// UTC renders timestamps in UTC instead of local time.
	UTC bool
}

// NewFileFormatter creates a file formatter with RFC 3339 UTC timestamps.
func NewFileFormatter() *FileFormatter {
	return &FileFormatter{
		TimestampLayout: time.RFC3339Nano,
		UTC:             true,
	}
}

type fileLine struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Format implements the sink formatter contract.
func (f *FileFormatter) Format(record *core.Record) ([]byte, error) {
	ts := record.Timestamp
	if f.UTC {
		ts = ts.UTC()
	}
	layout := f.TimestampLayout
	if layout == "" {
		layout = time.RFC3339Nano
	}
	return marshal(fileLine{
		Level:     record.Level.String(),
		Message:   record.Message,
		Timestamp: ts.Format(layout),
	})
}
