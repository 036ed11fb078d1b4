// Package metrics counts replicates and times simulator calls. The registry is
// written once, at exit, in the Prometheus text format (node_exporter textfile style).
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"predsim/internal/seqgen"
	"predsim/internal/simerr"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	reg        *prometheus.Registry
	replicates *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
}

// New registers the predsim collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		replicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predsim",
			Name:      "replicates_total",
			Help:      "Simulated replicates by substitution model.",
		}, []string{"model"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predsim",
			Name:      "simulator_failures_total",
			Help:      "Failed simulator calls by error class.",
		}, []string{"class"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "predsim",
			Name:      "simulator_seconds",
			Help:      "Wall time of one simulator call.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	m.reg.MustRegister(m.replicates, m.failures, m.duration)
	return m
}

// Registry exposes the underlying registry (for tests and custom exporters).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Instrument wraps sim so every call is timed and counted.
func (m *Metrics) Instrument(sim seqgen.Simulator) seqgen.Simulator {
	return seqgen.SimulatorFunc(func(ctx context.Context, req seqgen.Request) (seqgen.Result, error) {
		start := time.Now()
		res, err := sim.Simulate(ctx, req)
		m.duration.Observe(time.Since(start).Seconds())
		if err != nil {
			m.failures.WithLabelValues(simerr.Class(err)).Inc()
			return res, err
		}
		m.replicates.WithLabelValues(req.Params.Model()).Inc()
		return res, nil
	})
}

// WriteTextfile writes the current values to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
