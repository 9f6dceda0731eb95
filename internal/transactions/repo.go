package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// Aggregate is one bounded-memory pass over a filtered slice of the ledger.
type Aggregate struct {
	Count          int64           `gorm:"column:tx_count"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price_sum"`
	IPRelatedPrice decimal.Decimal `gorm:"column:ip_related_sum"`
	GrossPrice     decimal.Decimal `gorm:"column:gross_sum"`
	Reactions      int64           `gorm:"column:reaction_sum"`
}

// TypeAggregate is an Aggregate scoped to a single transaction type.
type TypeAggregate struct {
	TransactionType enums.TransactionType `gorm:"column:transaction_type"`
	Aggregate
}

// CustomerDateCount carries, per customer, the number of distinct transaction
// dates. Two or more distinct dates marks a repeat customer.
type CustomerDateCount struct {
	TransactionType enums.TransactionType `gorm:"column:transaction_type"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id"`
	DateCount       int64                 `gorm:"column:date_count"`
}

// Repository is the ledger-access handle: writes for recording sales, reads
// and single-pass aggregates for reporting.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter Filter) ([]models.Transaction, error)

	Aggregate(ctx context.Context, filter Filter) (*Aggregate, error)
	AggregateByType(ctx context.Context, filter Filter) ([]TypeAggregate, error)
	CustomerDateCounts(ctx context.Context, filter Filter, byType bool) ([]CustomerDateCount, error)
	DateBounds(ctx context.Context, filter Filter) (*time.Time, *time.Time, error)
	FulfilledBounds(ctx context.Context) (*time.Time, *time.Time, error)
	DistinctFulfilledDates(ctx context.Context) ([]time.Time, error)
	DistinctDateCount(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDocuments(tx, txn); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(txn).Error
	})
}

func (r *repository) Update(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDocuments(tx, txn); err != nil {
			return err
		}
		// created_at is immutable; the model may carry a zero value here.
		return tx.Omit(clause.Associations, "created_at").Save(txn).Error
	})
}

// saveDocuments persists any attached quote/order/invoice records and stamps
// their ids on the transaction so the row references them.
func saveDocuments(tx *gorm.DB, txn *models.Transaction) error {
	if txn.Quote != nil {
		if err := saveDocument(tx, txn.Quote.ID, txn.Quote); err != nil {
			return err
		}
		txn.QuoteID = &txn.Quote.ID
	}
	if txn.Order != nil {
		if err := saveDocument(tx, txn.Order.ID, txn.Order); err != nil {
			return err
		}
		txn.OrderID = &txn.Order.ID
	}
	if txn.Invoice != nil {
		if err := saveDocument(tx, txn.Invoice.ID, txn.Invoice); err != nil {
			return err
		}
		txn.InvoiceID = &txn.Invoice.ID
	}
	return nil
}

func saveDocument(tx *gorm.DB, id uuid.UUID, doc any) error {
	if id == uuid.Nil {
		return tx.Create(doc).Error
	}
	return tx.Omit("created_at").Save(doc).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vendor").
		Preload("Quote").
		Preload("Order").
		Preload("Invoice").
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	var txns []models.Transaction
	q := filter.apply(r.db.WithContext(ctx).Model(&models.Transaction{}))
	err := q.
		Preload("Customer").
		Preload("Vendor").
		Order("date DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

const aggregateColumns = `
COUNT(*) AS tx_count,
COALESCE(SUM(total_price), 0) AS total_price_sum,
COALESCE(SUM(ip_related_price), 0) AS ip_related_sum,
COALESCE(SUM(base_ip_related_price_per_reaction * number_of_reactions), 0) AS gross_sum,
COALESCE(SUM(number_of_reactions), 0) AS reaction_sum`

func (r *repository) Aggregate(ctx context.Context, filter Filter) (*Aggregate, error) {
	var agg Aggregate
	q := filter.apply(r.db.WithContext(ctx).Model(&models.Transaction{}))
	if err := q.Select(aggregateColumns).Scan(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *repository) AggregateByType(ctx context.Context, filter Filter) ([]TypeAggregate, error) {
	var aggs []TypeAggregate
	q := filter.apply(r.db.WithContext(ctx).Model(&models.Transaction{}))
	err := q.
		Select("transaction_type, " + aggregateColumns).
		Group("transaction_type").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}

func (r *repository) CustomerDateCounts(ctx context.Context, filter Filter, byType bool) ([]CustomerDateCount, error) {
	var counts []CustomerDateCount
	q := filter.apply(r.db.WithContext(ctx).Model(&models.Transaction{})).
		Where("customer_id IS NOT NULL")
	if byType {
		q = q.
			Select("transaction_type, customer_id, COUNT(DISTINCT date) AS date_count").
			Group("transaction_type").Group("customer_id")
	} else {
		q = q.
			Select("customer_id, COUNT(DISTINCT date) AS date_count").
			Group("customer_id")
	}
	if err := q.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// DateBounds returns the earliest and latest transaction dates in scope, or
// nils when nothing matches. Fetched as ordered single rows so the dates come
// back properly typed on every supported driver.
func (r *repository) DateBounds(ctx context.Context, filter Filter) (*time.Time, *time.Time, error) {
	first, err := r.boundary(ctx, filter, "", "date ASC")
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, nil
	}
	last, err := r.boundary(ctx, filter, "", "date DESC")
	if err != nil {
		return nil, nil, err
	}
	return &first.Date, &last.Date, nil
}

func (r *repository) FulfilledBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	filter := Filter{}
	first, err := r.boundary(ctx, filter, "date_fulfilled IS NOT NULL", "date_fulfilled ASC")
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, nil
	}
	last, err := r.boundary(ctx, filter, "date_fulfilled IS NOT NULL", "date_fulfilled DESC")
	if err != nil {
		return nil, nil, err
	}
	return first.DateFulfilled, last.DateFulfilled, nil
}

func (r *repository) boundary(ctx context.Context, filter Filter, cond string, order string) (*models.Transaction, error) {
	var txn models.Transaction
	q := filter.apply(r.db.WithContext(ctx).Model(&models.Transaction{}))
	if cond != "" {
		q = q.Where(cond)
	}
	err := q.Order(order).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) DistinctFulfilledDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("date_fulfilled IS NOT NULL").
		Distinct().
		Order("date_fulfilled ASC").
		Pluck("date_fulfilled", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *repository) DistinctDateCount(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("customer_id = ?", customerID).
		Distinct("date").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
