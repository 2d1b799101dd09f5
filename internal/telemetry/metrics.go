package telemetry

import (
	"net/http"
	"time"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlanMetrics provides Prometheus metrics for planning runs. A nil
// *PlanMetrics records nothing.
type PlanMetrics struct {
	plans        *prometheus.CounterVec
	planDuration *prometheus.HistogramVec
	products     *prometheus.CounterVec
	piles        *prometheus.CounterVec
	utilization  prometheus.Gauge
	importErrors *prometheus.CounterVec
	sharedPlans  prometheus.Counter

	registry *prometheus.Registry
}

// NewPlanMetrics creates the metrics on their own registry.
func NewPlanMetrics(namespace string) *PlanMetrics {
	registry := prometheus.NewRegistry()

	m := &PlanMetrics{
		registry: registry,

		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_total",
				Help:      "Total number of planning runs",
			},
			[]string{"source", "status"},
		),
		planDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_duration_seconds",
				Help:      "Duration of planning runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		products: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "products_total",
				Help:      "Products planned, by outcome",
			},
			[]string{"state"},
		),
		piles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "piles_total",
				Help:      "Piles built, by outcome",
			},
			[]string{"state"},
		),
		utilization: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_plan_utilization_percent",
				Help:      "Floor utilization of the most recent plan",
			},
		),
		importErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_errors_total",
				Help:      "Rejected input rows",
			},
			[]string{"source"},
		),
		sharedPlans: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shared_plans_total",
				Help:      "Plans stored for sharing",
			},
		),
	}

	registry.MustRegister(
		m.plans,
		m.planDuration,
		m.products,
		m.piles,
		m.utilization,
		m.importErrors,
		m.sharedPlans,
	)

	return m
}

// RecordPlan records a finished planning run.
func (m *PlanMetrics) RecordPlan(source string, result model.PlanResult, d time.Duration) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(source, "ok").Inc()
	m.planDuration.WithLabelValues(source).Observe(d.Seconds())
	m.products.WithLabelValues("allocated").Add(float64(result.Summary.AllocatedProducts))
	m.products.WithLabelValues("unallocated").Add(float64(result.Summary.UnallocatedProducts))
	m.piles.WithLabelValues("allocated").Add(float64(result.Summary.AllocatedPiles))
	m.piles.WithLabelValues("unallocated").Add(float64(result.Summary.UnallocatedPiles))
	m.utilization.Set(result.TotalUtilization())
}

// RecordFailure records a run that produced no plan, such as an
// unreadable input file.
func (m *PlanMetrics) RecordFailure(source string) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(source, "failed").Inc()
}

// RecordImportErrors counts rejected input rows.
func (m *PlanMetrics) RecordImportErrors(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.importErrors.WithLabelValues(source).Add(float64(n))
}

// RecordShare counts a stored plan.
func (m *PlanMetrics) RecordShare() {
	if m == nil {
		return
	}
	m.sharedPlans.Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *PlanMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
