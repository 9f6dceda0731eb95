package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// Repository manages persistence for price tiers and the scoped repricing of
// ledger rows a tier mutation triggers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, tier *models.PriceTier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PriceTier, error)
	ListByType(ctx context.Context, transactionType enums.TransactionType) ([]models.PriceTier, error)

	// ResolvePrice returns the price of the latest tier whose start_date is on
	// or before date, or zero when no tier covers the date.
	ResolvePrice(ctx context.Context, transactionType enums.TransactionType, date time.Time) (decimal.Decimal, error)

	// NextStart returns the earliest tier start strictly after the given date
	// for the type, or nil when the tier is the newest.
	NextStart(ctx context.Context, transactionType enums.TransactionType, after time.Time) (*time.Time, error)

	// Reprice rewrites the cached base price on every ledger row of the type
	// dated within [from, toExclusive). A nil toExclusive leaves the interval
	// open-ended. Returns the number of rows touched.
	Reprice(ctx context.Context, transactionType enums.TransactionType, price decimal.Decimal, from time.Time, toExclusive *time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a price tier repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tier *models.PriceTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PriceTier{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PriceTier, error) {
	var tier models.PriceTier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) ListByType(ctx context.Context, transactionType enums.TransactionType) ([]models.PriceTier, error) {
	var tiers []models.PriceTier
	err := r.db.WithContext(ctx).
		Where("transaction_type = ?", transactionType).
		Order("start_date DESC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) ResolvePrice(ctx context.Context, transactionType enums.TransactionType, date time.Time) (decimal.Decimal, error) {
	var tier models.PriceTier
	err := r.db.WithContext(ctx).
		Where("transaction_type = ? AND start_date <= ?", transactionType, date).
		Order("start_date DESC").
		First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return tier.PricePerReaction, nil
}

func (r *repository) NextStart(ctx context.Context, transactionType enums.TransactionType, after time.Time) (*time.Time, error) {
	var tier models.PriceTier
	err := r.db.WithContext(ctx).
		Where("transaction_type = ? AND start_date > ?", transactionType, after).
		Order("start_date ASC").
		First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier.StartDate, nil
}

func (r *repository) Reprice(ctx context.Context, transactionType enums.TransactionType, price decimal.Decimal, from time.Time, toExclusive *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("transaction_type = ? AND date >= ?", transactionType, from)
	if toExclusive != nil {
		q = q.Where("date < ?", *toExclusive)
	}
	result := q.Update("base_ip_related_price_per_reaction", price)
	return result.RowsAffected, result.Error
}
