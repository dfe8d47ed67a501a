// Package metrics holds the verifier's meters. Nothing is recorded
// until InitializePrometheusMetrics installs the Prometheus backend;
// before that every meter is a no-op.
package metrics

import (
	"net/http"
	"sync"
)

var (
	backendMu sync.RWMutex
	backend   Backend = noopBackend{}
)

// Opts names a meter. Name is prefixed with the "vesting" namespace.
type Opts struct {
	Name string
	Help string
}

// Backend creates meters and serves them over HTTP.
type Backend interface {
	Counter(Opts) Counter
	CounterVec(opts Opts, label string) CounterVec
	Gauge(Opts) Gauge
	Histogram(opts Opts, buckets []float64) Histogram
	Handler() http.Handler
}

type Counter interface{ Inc() }

// CounterVec is a counter partitioned by the value of one label.
type CounterVec interface{ With(value string) Counter }

type Gauge interface{ Set(float64) }

type Histogram interface{ Observe(float64) }

func current() Backend {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backend
}

func setBackend(b Backend) {
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
}

// HTTPHandler serves the installed backend's meters. It is nil
// while metrics are disabled.
func HTTPHandler() http.Handler {
	return current().Handler()
}

// meter creates its value from the installed backend on first use
// and again whenever the backend changes.
type meter[T any] struct {
	create func(Backend) T

	mu   sync.Mutex
	from Backend
	m    T
}

func newMeter[T any](create func(Backend) T) *meter[T] {
	return &meter[T]{create: create}
}

func (l *meter[T]) get() T {
	b := current()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.from != b {
		l.m = l.create(b)
		l.from = b
	}
	return l.m
}

type noopBackend struct{}

func (noopBackend) Counter(Opts) Counter                { return noop{} }
func (noopBackend) CounterVec(Opts, string) CounterVec  { return noop{} }
func (noopBackend) Gauge(Opts) Gauge                    { return noop{} }
func (noopBackend) Histogram(Opts, []float64) Histogram { return noop{} }
func (noopBackend) Handler() http.Handler               { return nil }

type noop struct{}

func (noop) Inc()                {}
func (noop) With(string) Counter { return noop{} }
func (noop) Set(float64)         {}
func (noop) Observe(float64)     {}
