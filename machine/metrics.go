package machine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for machine runs.
//
// Exposed metrics, all namespaced "statewalk":
//
//   - inflight_scenarios (gauge): scenarios currently executing. Tracks the
//     fan-out level, which equals the enumeration size while a run is live.
//   - scenarios_total (counter, by outcome): finished scenarios, with
//     outcome "completed" or "aborted" (guard short-circuit).
//   - assertions_total (counter, by status): checkpoint assertions
//     observed, with status "pass" or "fail".
//   - scenario_duration_ms (histogram): wall time per scenario, buckets
//     from 1ms to 60s to cover both in-memory actions and browser-driving
//     interactions.
//
// Wire a collector into a run with WithMetrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := machine.NewMetrics(registry)
//	report, err := m.Run(ctx, machine.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// All methods are safe for concurrent use by scenario workers.
type Metrics struct {
	inflightScenarios prometheus.Gauge
	scenariosTotal    *prometheus.CounterVec
	assertionsTotal   *prometheus.CounterVec
	scenarioDuration  prometheus.Histogram
}

// NewMetrics creates and registers the run metrics with the given registry.
// Pass prometheus.DefaultRegisterer for the process-global registry, or a
// private registry for isolation.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		inflightScenarios: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "statewalk",
			Name:      "inflight_scenarios",
			Help:      "Number of scenarios currently executing.",
		}),
		scenariosTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statewalk",
			Name:      "scenarios_total",
			Help:      "Finished scenarios by outcome (completed, aborted).",
		}, []string{"outcome"}),
		assertionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statewalk",
			Name:      "assertions_total",
			Help:      "Checkpoint assertions observed by status (pass, fail).",
		}, []string{"status"}),
		scenarioDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "statewalk",
			Name:      "scenario_duration_ms",
			Help:      "Scenario wall time in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 15000, 60000},
		}),
	}
}

// The internal recording methods tolerate a nil receiver so the engine and
// scheduler need no metrics-enabled branch.

func (m *Metrics) scenarioStarted() {
	if m == nil {
		return
	}
	m.inflightScenarios.Inc()
}

func (m *Metrics) scenarioFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inflightScenarios.Dec()
	m.scenariosTotal.WithLabelValues(outcome).Inc()
	m.scenarioDuration.Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) assertionObserved(ok bool) {
	if m == nil {
		return
	}
	status := "pass"
	if !ok {
		status = "fail"
	}
	m.assertionsTotal.WithLabelValues(status).Inc()
}
