package transactions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// Filter narrows ledger reads. Every field is optional; zero values match
// everything. The date window applies to date_fulfilled, matching how the
// books are reviewed (revenue counts when an order ships, not when it is
// placed).
type Filter struct {
	FromDate *time.Time
	ToDate   *time.Time

	// InProgressOnly selects unfulfilled transactions and ignores the window.
	InProgressOnly bool
	// Outstanding selects fulfilled-but-unpaid transactions and ignores the
	// window.
	Outstanding bool
	// IncludeInProgress widens a windowed query to also take unfulfilled
	// transactions regardless of date.
	IncludeInProgress bool

	CustomerID      *uuid.UUID
	VendorID        *uuid.UUID
	TransactionType *enums.TransactionType
	InstitutionType *enums.InstitutionType
}

// apply translates the filter into query conditions on the transactions table.
func (f Filter) apply(q *gorm.DB) *gorm.DB {
	switch {
	case f.InProgressOnly:
		q = q.Where("date_fulfilled IS NULL")
	case f.Outstanding:
		q = q.Where("date_fulfilled IS NOT NULL AND date_paid IS NULL")
	default:
		q = f.applyWindow(q)
	}

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.VendorID != nil {
		q = q.Where("vendor_id = ?", *f.VendorID)
	}
	if f.TransactionType != nil {
		q = q.Where("transaction_type = ?", *f.TransactionType)
	}
	if f.InstitutionType != nil {
		q = q.Where(
			"customer_id IN (SELECT id FROM customers WHERE institution_type = ?)",
			*f.InstitutionType,
		)
	}
	return q
}

func (f Filter) applyWindow(q *gorm.DB) *gorm.DB {
	if f.FromDate == nil && f.ToDate == nil {
		return q
	}

	cond := "date_fulfilled IS NOT NULL"
	args := []any{}
	if f.FromDate != nil {
		cond += " AND date_fulfilled >= ?"
		args = append(args, *f.FromDate)
	}
	if f.ToDate != nil {
		cond += " AND date_fulfilled <= ?"
		args = append(args, *f.ToDate)
	}

	if f.IncludeInProgress {
		return q.Where("("+cond+") OR date_fulfilled IS NULL", args...)
	}
	return q.Where(cond, args...)
}

// WithType returns a copy of the filter scoped to one transaction type.
func (f Filter) WithType(t enums.TransactionType) Filter {
	f.TransactionType = &t
	return f
}
