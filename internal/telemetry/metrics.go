// Package telemetry instruments the decorator lowering pass with
// Prometheus metrics. This is ambient observability, not a spec.md
// feature — it is carried anyway per SPEC_FULL.md §2, the same way a real
// compiler service instruments its hot passes.
//
// Modeled on AleutianFOSS's
// services/trace/agent/providers/egress/metrics.go: a package-level
// promauto-registered vector per concern, plus small methods on Metrics
// that hide the label plumbing from callers.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classesLoweredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "declower",
		Subsystem: "pass",
		Name:      "classes_lowered_total",
		Help:      "Total decorated classes lowered by the decorator lowering pass, by decorator proposal version.",
	}, []string{"version"})

	elementsLoweredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "declower",
		Subsystem: "pass",
		Name:      "elements_lowered_total",
		Help:      "Total decorated class elements lowered, by element kind.",
	}, []string{"kind"})

	fatalDiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "declower",
		Subsystem: "pass",
		Name:      "fatal_diagnostics_total",
		Help:      "Total P6 fatal diagnostics raised (writes to decorated private methods).",
	}, []string{"version"})

	phaseDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "declower",
		Subsystem: "pass",
		Name:      "phase_duration_seconds",
		Help:      "Wall time spent in each phase of the decorator lowering pass.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"phase"})
)

// Metrics is a thin per-Plugin handle so call sites don't reach for the
// package-level vectors directly; every Plugin shares the same underlying
// Prometheus registry (promauto registers once, at package init).
type Metrics struct{}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) ClassLowered(version string) {
	classesLoweredTotal.WithLabelValues(version).Inc()
}

func (m *Metrics) ElementLowered(kind string) {
	elementsLoweredTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) FatalDiagnostic(version string) {
	fatalDiagnosticsTotal.WithLabelValues(version).Inc()
}

// ObservePhase starts timing phase and returns a function that records the
// elapsed time under phase when called: `stop := m.ObservePhase("emit");
// ...; stop()`.
func (m *Metrics) ObservePhase(phase string) func() {
	start := time.Now()
	return func() {
		phaseDurationSeconds.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}
