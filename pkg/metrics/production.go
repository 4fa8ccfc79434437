package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetrics records outcomes of production-run executions.
type ProductionMetrics struct {
	duration  *prometheus.HistogramVec
	committed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	lowStock  prometheus.Counter
}

// NewProductionMetrics registers the production metrics on the provided registerer.
func NewProductionMetrics(reg prometheus.Registerer) *ProductionMetrics {
	if reg == nil {
		return &ProductionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "production_run_duration_seconds",
		Help:    "Duration of production run executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"recipe"})
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "production_runs_committed",
		Help: "Committed production runs.",
	}, []string{"recipe"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "production_runs_rejected",
		Help: "Rejected production runs.",
	}, []string{"recipe", "reason"})
	lowStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts",
		Help: "Components flagged at or below their replenishment floor after a run.",
	})
	reg.MustRegister(duration, committed, rejected, lowStock)
	return &ProductionMetrics{
		duration:  duration,
		committed: committed,
		rejected:  rejected,
		lowStock:  lowStock,
	}
}

// ObserveDuration records the execution time for the named recipe.
func (p *ProductionMetrics) ObserveDuration(recipe string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(recipe)).Observe(duration.Seconds())
}

// IncCommitted increments the committed counter for the named recipe.
func (p *ProductionMetrics) IncCommitted(recipe string) {
	if p == nil || p.committed == nil {
		return
	}
	p.committed.WithLabelValues(normalizeLabel(recipe)).Inc()
}

// IncRejected increments the rejected counter with the rejection reason.
func (p *ProductionMetrics) IncRejected(recipe, reason string) {
	if p == nil || p.rejected == nil {
		return
	}
	p.rejected.WithLabelValues(normalizeLabel(recipe), normalizeLabel(reason)).Inc()
}

// IncLowStockAlert counts a component crossing its replenishment floor.
func (p *ProductionMetrics) IncLowStockAlert() {
	if p == nil || p.lowStock == nil {
		return
	}
	p.lowStock.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
