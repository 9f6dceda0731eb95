package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// PeriodQuery captures the calendar-relative part of a report request.
type PeriodQuery struct {
	Year     int
	Quarter  *enums.Quarter
	FromDate *time.Time
	ToDate   *time.Time
}

// YearQuarters lists, for one year, the quarters that contain at least one
// fulfilled transaction.
type YearQuarters struct {
	Year     int             `json:"year"`
	Quarters []enums.Quarter `json:"quarters"`
}

// quarterBounds maps a quarter onto its fixed month/day sub-range.
func quarterBounds(year int, q enums.Quarter) (time.Time, time.Time, error) {
	switch q {
	case enums.QuarterQ1:
		return date(year, 1, 1), date(year, 3, 31), nil
	case enums.QuarterQ2:
		return date(year, 4, 1), date(year, 6, 30), nil
	case enums.QuarterQ3:
		return date(year, 7, 1), date(year, 9, 30), nil
	case enums.QuarterQ4:
		return date(year, 10, 1), date(year, 12, 31), nil
	default:
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid quarter %q", q))
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ResolveWindow turns a calendar-relative query into a concrete [from, to]
// window. A year pins the window to that year (optionally narrowed to a
// quarter); otherwise explicit dates win, and when neither is given the window
// spans the ledger's fulfillment dates, or today for an empty ledger.
func (s *service) ResolveWindow(ctx context.Context, q PeriodQuery) (*time.Time, *time.Time, error) {
	if q.Year != 0 {
		if q.Quarter != nil {
			from, to, err := quarterBounds(q.Year, *q.Quarter)
			if err != nil {
				return nil, nil, err
			}
			return &from, &to, nil
		}
		from, to := date(q.Year, 1, 1), date(q.Year, 12, 31)
		return &from, &to, nil
	}

	from, to := q.FromDate, q.ToDate
	if from != nil && to != nil {
		return from, to, nil
	}

	minFulfilled, maxFulfilled, err := s.ledger.FulfilledBounds(ctx)
	if err != nil {
		return nil, nil, err
	}
	if from == nil {
		from = minFulfilled
	}
	if to == nil {
		to = maxFulfilled
	}

	if from == nil || to == nil {
		today := s.now().Truncate(24 * time.Hour)
		if from == nil {
			from = &today
		}
		if to == nil {
			to = &today
		}
	}
	return from, to, nil
}

// ActiveQuarters reports which quarters of which years saw fulfillment
// activity, newest year first.
func (s *service) ActiveQuarters(ctx context.Context) ([]YearQuarters, error) {
	dates, err := s.ledger.DistinctFulfilledDates(ctx)
	if err != nil {
		return nil, err
	}

	byYear := map[int]map[enums.Quarter]bool{}
	for _, d := range dates {
		q, err := enums.QuarterOfMonth(int(d.Month()))
		if err != nil {
			return nil, err
		}
		if byYear[d.Year()] == nil {
			byYear[d.Year()] = map[enums.Quarter]bool{}
		}
		byYear[d.Year()][q] = true
	}

	out := make([]YearQuarters, 0, len(byYear))
	for year, quarters := range byYear {
		entry := YearQuarters{Year: year}
		for _, q := range enums.Quarters() {
			if quarters[q] {
				entry.Quarters = append(entry.Quarters, q)
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}
