package proclog

import (
	"sync"

	"github.com/willibrandon/proclog/sinks"
)

var (
	defaultMu       sync.Mutex
	defaultRegistry *sinks.Registry
)

// DefaultRegistry returns the registry shared by every logger created
// without WithRegistry. It is built on first use with the console sink
// and the ./process.log file sink.
func DefaultRegistry() *sinks.Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = sinks.NewDefaultRegistry(sinks.NewDefaultOptions())
	}
	return defaultRegistry
}

// SetDefaultRegistry replaces the shared registry used by loggers created
// from now on. Existing loggers keep the registry they were created with.
// The previous registry is returned and is not closed.
func SetDefaultRegistry(r *sinks.Registry) *sinks.Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	prev := defaultRegistry
	defaultRegistry = r
	return prev
}
