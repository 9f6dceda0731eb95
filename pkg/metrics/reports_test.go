package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReportMetrics(reg)

	m.ObserveReportDuration("royalties", 120*time.Millisecond)
	m.IncCacheHit()
	m.IncCacheMiss()
	m.AddRecomputedRows("insert", 7)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["report_duration_seconds"])
	assert.True(t, names["report_cache_requests"])
	assert.True(t, names["price_tier_rows_recomputed"])
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewReportMetrics(nil)
	m.ObserveReportDuration("royalties", time.Second)
	m.IncCacheHit()
	m.AddRecomputedRows("remove", -1)

	var zero *ReportMetrics
	zero.IncCacheMiss()
}
