// Package observability wires Prometheus metrics and OpenTelemetry tracing for
// stopping-distance runs.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles Prometheus metrics for calculations and sweeps. It
// satisfies engine.Recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Calculations *prometheus.CounterVec
	SweepPoints  *prometheus.CounterVec
	Distances    prometheus.Histogram
}

// NewCollector registers metrics against the provided registerer, defaulting
// to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calcs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stopping_calculations_total",
		Help: "Single stopping-distance calculations, labeled by status (ok or undefined).",
	}, []string{"status"}), "stopping_calculations_total")
	if err != nil {
		return nil, err
	}

	points, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stopping_sweep_points_total",
		Help: "Sweep points computed, labeled by variant and status.",
	}, []string{"variant", "status"}), "stopping_sweep_points_total")
	if err != nil {
		return nil, err
	}

	dist, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stopping_distance_meters",
		Help:    "Defined total stopping distances, metres.",
		Buckets: []float64{5, 10, 20, 40, 60, 80, 100, 150, 200, 300, 500},
	}), "stopping_distance_meters")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Calculations: calcs,
		SweepPoints:  points,
		Distances:    dist,
	}, nil
}

// ObserveCalculation records one single-speed calculation.
func (c *Collector) ObserveCalculation(defined bool, distanceM float64) {
	if c == nil {
		return
	}
	c.Calculations.WithLabelValues(statusLabel(defined)).Inc()
	if defined {
		c.Distances.Observe(distanceM)
	}
}

// ObservePoint records one sweep point.
func (c *Collector) ObservePoint(variant string, defined bool, distanceM float64) {
	if c == nil {
		return
	}
	c.SweepPoints.WithLabelValues(variant, statusLabel(defined)).Inc()
	if defined {
		c.Distances.Observe(distanceM)
	}
}

// WriteTextfile writes all gathered metrics to path in the Prometheus text
// format, for pickup by a node-exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

func statusLabel(defined bool) string {
	if defined {
		return "ok"
	}
	return "undefined"
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
