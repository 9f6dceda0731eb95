package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// Summary holds the scalar aggregates for one cohort of transactions.
// Every ratio is guarded: a zero denominator yields zero, never an error.
type Summary struct {
	Count               int64           `json:"count"`
	Total               decimal.Decimal `json:"total"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Reactions           int64           `json:"reactions"`
	RoyaltiesOwed       decimal.Decimal `json:"royalties_owed"`
	GrossIPRelated      decimal.Decimal `json:"gross_ip_related"`
	Discount            decimal.Decimal `json:"discount"`
	DiscountPct         decimal.Decimal `json:"discount_pct"`
	CustomerCount       int64           `json:"customer_count"`
	RepeatCustomerCount int64           `json:"repeat_customer_count"`
	RepeatCustomerPct   decimal.Decimal `json:"repeat_customer_pct"`
}

// TypeSummary is a Summary scoped to one transaction type.
type TypeSummary struct {
	TransactionType enums.TransactionType `json:"transaction_type"`
	Label           string                `json:"label"`
	Summary
}

// Report is the full royalties report over a filtered slice of the ledger.
// Total is the IP-related revenue (the royalty basis); TotalPrice is the
// headline revenue.
type Report struct {
	FromDate      *time.Time      `json:"from_date,omitempty"`
	ToDate        *time.Time      `json:"to_date,omitempty"`
	Days          int             `json:"days"`
	Months        decimal.Decimal `json:"months"`
	TotalPerMonth decimal.Decimal `json:"total_per_month"`
	Summary
	ByType []TypeSummary `json:"by_type,omitempty"`
}

var thirty = decimal.NewFromInt(30)

func summaryFromAggregate(agg transactions.Aggregate) Summary {
	discount := agg.GrossPrice.Sub(agg.IPRelatedPrice)
	return Summary{
		Count:          agg.Count,
		Total:          agg.IPRelatedPrice,
		TotalPrice:     agg.TotalPrice,
		Reactions:      agg.Reactions,
		RoyaltiesOwed:  agg.IPRelatedPrice.Mul(models.RoyaltyRate),
		GrossIPRelated: agg.GrossPrice,
		Discount:       discount,
		DiscountPct:    guardedRatio(discount, agg.GrossPrice),
	}
}

func (s *Summary) applyCustomerStats(counts []transactions.CustomerDateCount) {
	var customers, repeats int64
	for _, c := range counts {
		customers++
		if c.DateCount >= 2 {
			repeats++
		}
	}
	s.CustomerCount = customers
	s.RepeatCustomerCount = repeats
	s.RepeatCustomerPct = guardedRatio(
		decimal.NewFromInt(repeats), decimal.NewFromInt(customers))
}

func guardedRatio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

func sortByBusinessRelevance(byType []TypeSummary) {
	sort.SliceStable(byType, func(i, j int) bool {
		return byType[i].TotalPrice.GreaterThan(byType[j].TotalPrice)
	})
}
