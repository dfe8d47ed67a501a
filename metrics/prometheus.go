package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vesting"

// InitializePrometheusMetrics installs a Prometheus backend with its
// own registry, including Go runtime and process collectors. Later
// calls keep the installed backend.
func InitializePrometheusMetrics() {
	backendMu.Lock()
	defer backendMu.Unlock()
	if _, ok := backend.(*promBackend); !ok {
		backend = newPromBackend()
	}
}

// promBackend registers every meter it creates. Creating the same
// name twice is a programming error and panics.
type promBackend struct {
	registry *prometheus.Registry
}

func newPromBackend() *promBackend {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
	return &promBackend{registry: reg}
}

func (p *promBackend) Counter(o Opts) Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: o.Name, Help: o.Help})
	p.registry.MustRegister(c)
	return c
}

func (p *promBackend) CounterVec(o Opts, label string) CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: o.Name, Help: o.Help}, []string{label})
	p.registry.MustRegister(c)
	return promCounterVec{c}
}

func (p *promBackend) Gauge(o Opts) Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: o.Name, Help: o.Help})
	p.registry.MustRegister(g)
	return g
}

func (p *promBackend) Histogram(o Opts, buckets []float64) Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      o.Name,
		Help:      o.Help,
		Buckets:   buckets,
	})
	p.registry.MustRegister(h)
	return h
}

func (p *promBackend) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

type promCounterVec struct {
	vec *prometheus.CounterVec
}

func (v promCounterVec) With(value string) Counter {
	return v.vec.WithLabelValues(value)
}
