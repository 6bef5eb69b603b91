package proclog

import (
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/selflog"
)

// DefaultNamespace prefixes the metric names.
const DefaultNamespace = "proclog"

// Metrics counts accepted records per level and failed sink writes.
// Pass it to WithHook to count records and use ErrorHandler as the
// registry error handler to count failures.
type Metrics struct {
	Records    *prometheus.CounterVec
	SinkErrors prometheus.Counter
}

// NewMetrics returns metrics ready to be registered with Collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	const subsystem = "log"

	return &Metrics{
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_total",
			Help:      "Number of accepted log records by level.",
		}, []string{"level"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sink_errors_total",
			Help:      "Number of failed sink writes.",
		}),
	}
}

// Fire implements core.Hook.
func (m *Metrics) Fire(record *core.Record) error {
	m.Records.WithLabelValues(record.Level.String()).Inc()
	return nil
}

// ErrorHandler returns a registry error handler that counts every failure
// carried by err and then passes err on to next. A nil next reports to
// selflog.
func (m *Metrics) ErrorHandler(next func(error)) func(error) {
	if next == nil {
		next = func(err error) {
			selflog.Report("registry", err)
		}
	}
	return func(err error) {
		if merr, ok := err.(*multierror.Error); ok {
			m.SinkErrors.Add(float64(len(merr.Errors)))
		} else {
			m.SinkErrors.Inc()
		}
		next(err)
	}
}

// Collectors returns the collectors to register with a prometheus registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Records, m.SinkErrors}
}
