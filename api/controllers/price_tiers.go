package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/veridian-genomics/revenue-tracker/api/middleware"
	"github.com/veridian-genomics/revenue-tracker/api/responses"
	"github.com/veridian-genomics/revenue-tracker/api/validators"
	"github.com/veridian-genomics/revenue-tracker/internal/pricing"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
)

type priceTierCreateRequest struct {
	TransactionType  string          `json:"transaction_type" validate:"required"`
	StartDate        string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	PricePerReaction decimal.Decimal `json:"price_per_reaction"`
}

// PriceTierPeriods lists the effective periods for one transaction type,
// newest first.
func PriceTierPeriods(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		transactionType, err := validators.ParseQueryTransactionType(r, "type")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if transactionType == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "type is required"))
			return
		}

		periods, err := svc.ListPeriods(ctx, *transactionType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, periods)
	}
}

// PriceTierCreate inserts a tier and reprices the transactions the new tier
// now covers.
func PriceTierCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req priceTierCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		transactionType, err := enums.ParseTransactionType(strings.TrimSpace(req.TransactionType))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type"))
			return
		}
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start_date must be YYYY-MM-DD"))
			return
		}
		if req.PricePerReaction.IsNegative() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price_per_reaction must be non-negative"))
			return
		}

		tier := &models.PriceTier{
			TransactionType:  transactionType,
			StartDate:        startDate,
			PricePerReaction: req.PricePerReaction,
		}

		if err := svc.Insert(ctx, tier); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// tier changes rewrite ledger rows, so record who made them
		if logg != nil {
			auditCtx := logg.WithFields(ctx, map[string]any{
				"operator":         middleware.OperatorFromContext(ctx),
				"transaction_type": tier.TransactionType,
				"start_date":       tier.StartDate.Format("2006-01-02"),
			})
			logg.Info(auditCtx, "price tier created")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":                 tier.ID,
			"transaction_type":   tier.TransactionType,
			"start_date":         tier.StartDate.Format("2006-01-02"),
			"price_per_reaction": tier.PricePerReaction,
		})
	}
}

// PriceTierDelete removes a tier and reprices its former interval against the
// tier that takes over.
func PriceTierDelete(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "tierId"), "tierId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			auditCtx := logg.WithFields(ctx, map[string]any{
				"operator": middleware.OperatorFromContext(ctx),
				"tier_id":  id,
			})
			logg.Info(auditCtx, "price tier removed")
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
