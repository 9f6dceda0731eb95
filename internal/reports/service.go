package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/metrics"
)

// Service computes royalty reports over the ledger. It is stateless: every
// call takes an explicit filter and reads through the ledger handle it was
// wired with.
type Service interface {
	GetRoyaltiesReport(ctx context.Context, filter transactions.Filter) (*Report, error)
	ResolveWindow(ctx context.Context, q PeriodQuery) (*time.Time, *time.Time, error)
	ActiveQuarters(ctx context.Context) ([]YearQuarters, error)
}

type service struct {
	ledger  transactions.Repository
	cache   *Cache
	metrics *metrics.ReportMetrics
	now     func() time.Time
}

// NewService wires the report aggregator. Cache and metrics are optional.
func NewService(ledger transactions.Repository, cache *Cache, m *metrics.ReportMetrics) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{
		ledger:  ledger,
		cache:   cache,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) GetRoyaltiesReport(ctx context.Context, filter transactions.Filter) (*Report, error) {
	if cached, ok := s.cache.Lookup(ctx, filter); ok {
		s.metrics.IncCacheHit()
		return cached, nil
	}
	s.metrics.IncCacheMiss()

	started := s.now()
	report, err := s.compute(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveReportDuration("royalties", s.now().Sub(started))

	s.cache.Store(ctx, filter, report)
	return report, nil
}

func (s *service) compute(ctx context.Context, filter transactions.Filter) (*Report, error) {
	agg, err := s.ledger.Aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}

	// "no matching transactions" is a sentinel report, not an error
	if agg.Count == 0 {
		return &Report{}, nil
	}

	report := &Report{Summary: summaryFromAggregate(*agg)}

	minDate, maxDate, err := s.ledger.DateBounds(ctx, filter)
	if err != nil {
		return nil, err
	}
	if minDate != nil && maxDate != nil {
		report.FromDate = minDate
		report.ToDate = maxDate
		report.Days = int(maxDate.Sub(*minDate).Hours()/24) + 1
		report.Months = decimal.NewFromInt(int64(report.Days)).Div(thirty)
		report.TotalPerMonth = guardedRatio(report.Total, report.Months)
	}

	counts, err := s.ledger.CustomerDateCounts(ctx, filter, false)
	if err != nil {
		return nil, err
	}
	report.applyCustomerStats(counts)

	byType, err := s.byType(ctx, filter)
	if err != nil {
		return nil, err
	}
	report.ByType = byType

	return report, nil
}

func (s *service) byType(ctx context.Context, filter transactions.Filter) ([]TypeSummary, error) {
	aggs, err := s.ledger.AggregateByType(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(aggs) == 0 {
		return nil, nil
	}

	typeCounts, err := s.ledger.CustomerDateCounts(ctx, filter, true)
	if err != nil {
		return nil, err
	}

	summaries := make([]TypeSummary, 0, len(aggs))
	for _, agg := range aggs {
		entry := TypeSummary{
			TransactionType: agg.TransactionType,
			Label:           agg.TransactionType.Verbose(),
			Summary:         summaryFromAggregate(agg.Aggregate),
		}
		var scoped []transactions.CustomerDateCount
		for _, c := range typeCounts {
			if c.TransactionType == agg.TransactionType {
				scoped = append(scoped, c)
			}
		}
		entry.applyCustomerStats(scoped)
		summaries = append(summaries, entry)
	}

	sortByBusinessRelevance(summaries)
	return summaries, nil
}
