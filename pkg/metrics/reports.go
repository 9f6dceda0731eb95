package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records royalty report computation and tier recompute activity.
type ReportMetrics struct {
	duration   *prometheus.HistogramVec
	cacheHits  *prometheus.CounterVec
	recomputed *prometheus.CounterVec
}

// NewReportMetrics registers the report metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_duration_seconds",
		Help:    "Duration of royalty report computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_requests",
		Help: "Report cache lookups partitioned by outcome.",
	}, []string{"outcome"})
	recomputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_tier_rows_recomputed",
		Help: "Transactions repriced by tier inserts and removals.",
	}, []string{"operation"})
	reg.MustRegister(duration, cacheHits, recomputed)
	return &ReportMetrics{
		duration:   duration,
		cacheHits:  cacheHits,
		recomputed: recomputed,
	}
}

// ObserveReportDuration records the duration for the named report.
func (m *ReportMetrics) ObserveReportDuration(report string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(report)).Observe(duration.Seconds())
}

// IncCacheHit counts a report served from cache.
func (m *ReportMetrics) IncCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a report computed from the ledger.
func (m *ReportMetrics) IncCacheMiss() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("miss").Inc()
}

// AddRecomputedRows records how many transactions a tier mutation repriced.
func (m *ReportMetrics) AddRecomputedRows(operation string, rows int64) {
	if m == nil || m.recomputed == nil {
		return
	}
	if rows < 0 {
		rows = 0
	}
	m.recomputed.WithLabelValues(normalizeLabel(operation)).Add(float64(rows))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
