package core

// Sink outputs records to a destination.
type Sink interface {
	// Emit writes the record to the sink's destination.
	// A returned error is reported by the caller and never retried.
	Emit(record *Record) error

	// Close releases any resources held by the sink.
	Close() error
}

// SinkKind tags a sink at registration time. At most one console and one
// file sink can be registered at a time; custom sinks always coexist.
type SinkKind int

const (
	// KindCustom is any destination other than the built-in ones.
	KindCustom SinkKind = iota

	// KindConsole is the colorized console destination.
	KindConsole

	// KindFile is the rotating file destination.
	KindFile
)

// String implements fmt.Stringer.
func (k SinkKind) String() string {
	switch k {
	case KindConsole:
		return "console"
	case KindFile:
		return "file"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// Builtin reports whether at most one sink of kind k can be registered.
func (k SinkKind) Builtin() bool {
	return k == KindConsole || k == KindFile
}

// Hook is fired for every record a logger accepts.
// Note, the call must be non-blocking.
type Hook interface {
	Fire(record *Record) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(record *Record) error

// Fire implements Hook.
func (f HookFunc) Fire(record *Record) error {
	return f(record)
}
