// Package metrics exposes prometheus instrumentation for the billing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides Metrics registered on the default prometheus registerer.
var Module = fx.Provide(NewDefault)

// Metrics counts billing-engine activity.
type Metrics struct {
	invoicesCreated  prometheus.Counter
	unitsSkipped     *prometheus.CounterVec
	generationRuns   *prometheus.CounterVec
	sweepTransitions prometheus.Counter
	jobDuration      *prometheus.HistogramVec
	jobErrors        *prometheus.CounterVec
}

// New builds Metrics registered on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentora_invoices_created_total",
			Help: "Rent invoices created by generation runs.",
		}),
		unitsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentora_generation_units_skipped_total",
			Help: "Units skipped during generation, by reason.",
		}, []string{"reason"}),
		generationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentora_generation_runs_total",
			Help: "Generation runs, by result.",
		}, []string{"result"}),
		sweepTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentora_overdue_transitions_total",
			Help: "Invoices moved to OVERDUE by the sweep.",
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentora_scheduler_job_duration_seconds",
			Help:    "Scheduler job wall time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentora_scheduler_job_errors_total",
			Help: "Scheduler job failures.",
		}, []string{"job"}),
	}
	reg.MustRegister(
		m.invoicesCreated,
		m.unitsSkipped,
		m.generationRuns,
		m.sweepTransitions,
		m.jobDuration,
		m.jobErrors,
	)
	return m
}

// NewDefault registers on the process-wide default registerer.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

func (m *Metrics) IncInvoicesCreated() {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
}

func (m *Metrics) IncUnitSkipped(reason string) {
	if m == nil {
		return
	}
	m.unitsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncGenerationRun(result string) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) AddSweepTransitions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepTransitions.Add(float64(n))
}

func (m *Metrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}
