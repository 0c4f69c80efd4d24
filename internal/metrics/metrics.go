package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/presshub/presshub/internal/scheduler"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ContentPromoted    prometheus.Counter
	PromotionConflicts prometheus.Counter
	PromotionFailures  prometheus.Counter
	TicksSkipped       prometheus.Counter
	PassDuration       prometheus.Histogram
	DueBacklog         prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ContentPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "content_promoted_total",
			Help: "Total number of items promoted from scheduled to published.",
		}),
		PromotionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promotion_conflicts_total",
			Help: "Promotions skipped because a concurrent edit changed the item first.",
		}),
		PromotionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promotion_failures_total",
			Help: "Promotion attempts that failed transiently and will be retried.",
		}),
		TicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_ticks_skipped_total",
			Help: "Timer ticks dropped because the previous pass was still running.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_pass_duration_seconds",
			Help:    "Wall-clock duration of one scheduler pass.",
			Buckets: prometheus.DefBuckets,
		}),
		DueBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_due_items",
			Help: "Number of due items examined by the most recent pass.",
		}),
	}

	reg.MustRegister(
		m.ContentPromoted,
		m.PromotionConflicts,
		m.PromotionFailures,
		m.TicksSkipped,
		m.PassDuration,
		m.DueBacklog,
	)

	return m
}

// Reporter adapts Metrics to the scheduler's Reporter interface, keeping
// prometheus observation calls out of the scheduler package.
func (m *Metrics) Reporter() scheduler.Reporter {
	return reporter{m}
}

type reporter struct {
	m *Metrics
}

func (r reporter) PassCompleted(res scheduler.PassResult) {
	r.m.PassDuration.Observe(res.Duration.Seconds())
	r.m.DueBacklog.Set(float64(res.Examined))
}

func (r reporter) TickSkipped() {
	r.m.TicksSkipped.Inc()
}

func (r reporter) ItemPromoted(string) {
	r.m.ContentPromoted.Inc()
}

func (r reporter) ItemSkipped(string, string) {
	r.m.PromotionConflicts.Inc()
}

func (r reporter) ItemFailed(string, error) {
	r.m.PromotionFailures.Inc()
}
