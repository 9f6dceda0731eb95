package controllers

import (
	"net/http"

	"github.com/veridian-genomics/revenue-tracker/api/responses"
	"github.com/veridian-genomics/revenue-tracker/api/validators"
	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
)

// reportFilter assembles a ledger filter from the request's query parameters.
// Calendar parameters (year, quarter) and explicit dates are resolved through
// the report service so defaulting matches everywhere.
func reportFilter(r *http.Request, svc reports.Service) (transactions.Filter, error) {
	var filter transactions.Filter

	year, err := validators.ParseQueryInt(r, "year", 0, 1990, 2100)
	if err != nil {
		return filter, err
	}
	quarter, err := validators.ParseQueryQuarter(r, "quarter")
	if err != nil {
		return filter, err
	}
	if quarter != nil && year == 0 {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "quarter requires a year")
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	resolvedFrom, resolvedTo, err := svc.ResolveWindow(r.Context(), reports.PeriodQuery{
		Year:     year,
		Quarter:  quarter,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return filter, err
	}
	filter.FromDate = resolvedFrom
	filter.ToDate = resolvedTo

	if filter.CustomerID, err = validators.ParseQueryUUID(r, "customer_id"); err != nil {
		return filter, err
	}
	if filter.VendorID, err = validators.ParseQueryUUID(r, "vendor_id"); err != nil {
		return filter, err
	}
	if filter.TransactionType, err = validators.ParseQueryTransactionType(r, "type"); err != nil {
		return filter, err
	}
	if filter.InstitutionType, err = validators.ParseQueryInstitutionType(r, "institution"); err != nil {
		return filter, err
	}
	if filter.IncludeInProgress, err = validators.ParseQueryBool(r, "include_in_progress"); err != nil {
		return filter, err
	}

	return filter, nil
}

// RoyaltiesReport serves the aggregated royalties report for a filtered,
// windowed slice of the ledger.
func RoyaltiesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		filter, err := reportFilter(r, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := svc.GetRoyaltiesReport(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// ActiveQuarters lists, per year, the quarters with fulfillment activity.
func ActiveQuarters(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		quarters, err := svc.ActiveQuarters(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, quarters)
	}
}
