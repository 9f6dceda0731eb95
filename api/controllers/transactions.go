package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridian-genomics/revenue-tracker/api/responses"
	"github.com/veridian-genomics/revenue-tracker/api/validators"
	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
)

type documentRequest struct {
	Number string `json:"number" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

type invoiceRequest struct {
	Number   string  `json:"number" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	DatePaid *string `json:"date_paid" validate:"omitempty,datetime=2006-01-02"`
}

type transactionSaveRequest struct {
	TransactionType    string           `json:"transaction_type" validate:"required"`
	CustomerID         *string          `json:"customer_id"`
	VendorID           *string          `json:"vendor_id"`
	NumberOfReactions  int              `json:"number_of_reactions" validate:"min=0"`
	TotalPrice         decimal.Decimal  `json:"total_price"`
	IPRelatedPrice     decimal.Decimal  `json:"ip_related_price"`
	Date               string           `json:"date" validate:"required,datetime=2006-01-02"`
	DateSamplesArrived *string          `json:"date_samples_arrived" validate:"omitempty,datetime=2006-01-02"`
	DateFulfilled      *string          `json:"date_fulfilled" validate:"omitempty,datetime=2006-01-02"`
	DatePaid           *string          `json:"date_paid" validate:"omitempty,datetime=2006-01-02"`
	Quote              *documentRequest `json:"quote"`
	Order              *documentRequest `json:"order"`
	Invoice            *invoiceRequest  `json:"invoice"`
	Description        *string          `json:"description"`
	Notes              *string          `json:"notes"`
}

// apply writes the request onto the model. Fields absent from the payload
// keep whatever value the model already holds, so updates never erase
// persisted columns the caller did not send.
func (req transactionSaveRequest) apply(txn *models.Transaction) error {
	transactionType, err := enums.ParseTransactionType(strings.TrimSpace(req.TransactionType))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}

	txn.TransactionType = transactionType
	txn.NumberOfReactions = req.NumberOfReactions
	txn.TotalPrice = req.TotalPrice
	txn.IPRelatedPrice = req.IPRelatedPrice
	txn.Date = date
	txn.Description = req.Description
	txn.Notes = req.Notes

	if txn.CustomerID, err = parseOptionalUUID(req.CustomerID, "customer_id"); err != nil {
		return err
	}
	if txn.VendorID, err = parseOptionalUUID(req.VendorID, "vendor_id"); err != nil {
		return err
	}
	if txn.DateSamplesArrived, err = parseOptionalDate(req.DateSamplesArrived, "date_samples_arrived"); err != nil {
		return err
	}
	if txn.DateFulfilled, err = parseOptionalDate(req.DateFulfilled, "date_fulfilled"); err != nil {
		return err
	}
	if txn.DatePaid, err = parseOptionalDate(req.DatePaid, "date_paid"); err != nil {
		return err
	}

	// stale preloads must not survive an id change
	if txn.Customer != nil && (txn.CustomerID == nil || *txn.CustomerID != txn.Customer.ID) {
		txn.Customer = nil
	}
	if txn.Vendor != nil && (txn.VendorID == nil || *txn.VendorID != txn.Vendor.ID) {
		txn.Vendor = nil
	}

	return req.applyDocuments(txn)
}

func (req transactionSaveRequest) applyDocuments(txn *models.Transaction) error {
	if req.Quote != nil {
		date, err := time.Parse("2006-01-02", req.Quote.Date)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "quote date must be YYYY-MM-DD")
		}
		if txn.Quote == nil {
			txn.Quote = &models.Quote{}
		}
		txn.Quote.Number = req.Quote.Number
		txn.Quote.Date = date
	}
	if req.Order != nil {
		date, err := time.Parse("2006-01-02", req.Order.Date)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "order date must be YYYY-MM-DD")
		}
		if txn.Order == nil {
			txn.Order = &models.Order{}
		}
		txn.Order.Number = req.Order.Number
		txn.Order.Date = date
	}
	if req.Invoice != nil {
		date, err := time.Parse("2006-01-02", req.Invoice.Date)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invoice date must be YYYY-MM-DD")
		}
		if txn.Invoice == nil {
			txn.Invoice = &models.Invoice{}
		}
		txn.Invoice.Number = req.Invoice.Number
		txn.Invoice.Date = date
		if txn.Invoice.DatePaid, err = parseOptionalDate(req.Invoice.DatePaid, "invoice.date_paid"); err != nil {
			return err
		}
	}
	return nil
}

func (req transactionSaveRequest) toModel() (*models.Transaction, error) {
	txn := &models.Transaction{}
	if err := req.apply(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a UUID").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a date (YYYY-MM-DD)").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}

// transactionView is a transaction plus its derived bookkeeping columns.
type transactionView struct {
	ID                 uuid.UUID             `json:"id"`
	TransactionType    enums.TransactionType `json:"transaction_type"`
	TypeLabel          string                `json:"type_label"`
	CustomerID         *uuid.UUID            `json:"customer_id,omitempty"`
	CustomerName       string                `json:"customer_name,omitempty"`
	VendorID           *uuid.UUID            `json:"vendor_id,omitempty"`
	VendorName         string                `json:"vendor_name,omitempty"`
	NumberOfReactions  int                   `json:"number_of_reactions"`
	TotalPrice         decimal.Decimal       `json:"total_price"`
	IPRelatedPrice     decimal.Decimal       `json:"ip_related_price"`
	BasePricePerRxn    decimal.Decimal       `json:"base_price_per_reaction"`
	PricePerSample     *decimal.Decimal      `json:"price_per_sample,omitempty"`
	RoyaltiesOwed      decimal.Decimal       `json:"royalties_owed"`
	Discount           decimal.Decimal       `json:"discount"`
	DiscountPct        decimal.Decimal       `json:"discount_pct"`
	Date               time.Time             `json:"date"`
	DateSamplesArrived *time.Time            `json:"date_samples_arrived,omitempty"`
	DateFulfilled      *time.Time            `json:"date_fulfilled,omitempty"`
	DatePaid           *time.Time            `json:"date_paid,omitempty"`
	Outstanding        bool                  `json:"outstanding"`
	Prepaid            bool                  `json:"prepaid"`
	Quote              *documentView         `json:"quote,omitempty"`
	Order              *documentView         `json:"order,omitempty"`
	Invoice            *invoiceView          `json:"invoice,omitempty"`
	Description        *string               `json:"description,omitempty"`
	Notes              *string               `json:"notes,omitempty"`
}

type documentView struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`
	Date   time.Time `json:"date"`
}

type invoiceView struct {
	ID       uuid.UUID  `json:"id"`
	Number   string     `json:"number"`
	Date     time.Time  `json:"date"`
	DatePaid *time.Time `json:"date_paid,omitempty"`
}

func viewFromTransaction(txn models.Transaction) transactionView {
	view := transactionView{
		ID:                 txn.ID,
		TransactionType:    txn.TransactionType,
		TypeLabel:          txn.TransactionType.Verbose(),
		CustomerID:         txn.CustomerID,
		VendorID:           txn.VendorID,
		NumberOfReactions:  txn.NumberOfReactions,
		TotalPrice:         txn.TotalPrice,
		IPRelatedPrice:     txn.IPRelatedPrice,
		BasePricePerRxn:    txn.BaseIPRelatedPricePerReaction,
		RoyaltiesOwed:      txn.RoyaltiesOwed(),
		Discount:           txn.IPRelatedDiscount(),
		DiscountPct:        txn.IPRelatedDiscountPct(),
		Date:               txn.Date,
		DateSamplesArrived: txn.DateSamplesArrived,
		DateFulfilled:      txn.DateFulfilled,
		DatePaid:           txn.DatePaid,
		Outstanding:        txn.IsOutstanding(),
		Prepaid:            txn.IsPrepaid(),
		Description:        txn.Description,
		Notes:              txn.Notes,
	}
	if perSample, ok := txn.PricePerSample(); ok {
		view.PricePerSample = &perSample
	}
	if txn.Customer != nil {
		view.CustomerName = txn.Customer.Name
	}
	if txn.Vendor != nil {
		view.VendorName = txn.Vendor.Name
	}
	if txn.Quote != nil {
		view.Quote = &documentView{ID: txn.Quote.ID, Number: txn.Quote.Number, Date: txn.Quote.Date}
	}
	if txn.Order != nil {
		view.Order = &documentView{ID: txn.Order.ID, Number: txn.Order.Number, Date: txn.Order.Date}
	}
	if txn.Invoice != nil {
		view.Invoice = &invoiceView{
			ID:       txn.Invoice.ID,
			Number:   txn.Invoice.Number,
			Date:     txn.Invoice.Date,
			DatePaid: txn.Invoice.DatePaid,
		}
	}
	return view
}

func viewsFromTransactions(txns []models.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, viewFromTransaction(txn))
	}
	return views
}

// TransactionList serves the windowed ledger view: the matching transactions
// together with their aggregated report.
func TransactionList(svc transactions.Service, reportSvc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		filter, err := reportFilter(r, reportSvc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		txns, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := reportSvc.GetRoyaltiesReport(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		inProgressFilter := transactions.Filter{
			CustomerID:      filter.CustomerID,
			VendorID:        filter.VendorID,
			TransactionType: filter.TransactionType,
			InstitutionType: filter.InstitutionType,
			InProgressOnly:  true,
		}
		inProgress, err := svc.List(ctx, inProgressFilter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		inProgressReport, err := reportSvc.GetRoyaltiesReport(ctx, inProgressFilter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"transactions":       viewsFromTransactions(txns),
			"report":             report,
			"in_progress":        viewsFromTransactions(inProgress),
			"in_progress_report": inProgressReport,
		})
	}
}

// TransactionOutstanding lists fulfilled-but-unpaid transactions.
func TransactionOutstanding(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		txns, err := svc.List(ctx, transactions.Filter{Outstanding: true})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, viewsFromTransactions(txns))
	}
}

func TransactionDetail(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		txn, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, viewFromTransaction(*txn))
	}
}

func TransactionCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req transactionSaveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		txn, err := req.toModel()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Save(ctx, txn); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, viewFromTransaction(*txn))
	}
}

func TransactionUpdate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// load-then-merge: rejects unknown ids and keeps columns the
		// payload does not carry from being overwritten
		txn, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req transactionSaveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := req.apply(txn); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Save(ctx, txn); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, viewFromTransaction(*txn))
	}
}
