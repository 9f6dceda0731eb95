package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veridian-genomics/revenue-tracker/api/responses"
	"github.com/veridian-genomics/revenue-tracker/api/validators"
	"github.com/veridian-genomics/revenue-tracker/internal/customers"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
)

type customerView struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	InstitutionName string                `json:"institution_name"`
	InstitutionType enums.InstitutionType `json:"institution_type"`
	ContactName     *string               `json:"contact_name,omitempty"`
	Country         *string               `json:"country,omitempty"`
}

func viewFromCustomer(c models.Customer) customerView {
	return customerView{
		ID:              c.ID,
		Name:            c.Name,
		InstitutionName: c.InstitutionName,
		InstitutionType: c.InstitutionType,
		ContactName:     c.ContactName,
		Country:         c.Country,
	}
}

func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		views := make([]customerView, 0, len(list))
		for _, c := range list {
			views = append(views, viewFromCustomer(c))
		}
		responses.WriteSuccess(w, views)
	}
}

func VendorList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := svc.ListVendors(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CustomerDetail serves the per-customer report: identity, report over the
// optional window, fulfilled and in-progress transactions, repeat flag.
func CustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Detail(ctx, id, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"customer":    viewFromCustomer(detail.Customer),
			"repeat":      detail.Repeat,
			"report":      detail.Report,
			"fulfilled":   viewsFromTransactions(detail.Fulfilled),
			"in_progress": viewsFromTransactions(detail.InProgress),
		})
	}
}
