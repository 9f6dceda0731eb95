package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/db"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
	"github.com/veridian-genomics/revenue-tracker/pkg/metrics"
)

// Period is one effective pricing interval: the tier's price held from Start
// through End inclusive.
type Period struct {
	TierID uuid.UUID             `json:"tier_id"`
	Type   enums.TransactionType `json:"transaction_type"`
	Start  time.Time             `json:"start_date"`
	End    time.Time             `json:"end_date"`
	Price  decimal.Decimal       `json:"price_per_reaction"`
}

// LedgerVersioner invalidates cached reports after tier mutations.
type LedgerVersioner interface {
	Bump(ctx context.Context)
}

// Service is the price tier store. Tier mutations reprice only the ledger rows
// inside the affected interval, and the tier write plus the repricing commit
// as one transaction.
type Service interface {
	Resolve(ctx context.Context, transactionType enums.TransactionType, date time.Time) (decimal.Decimal, error)
	ListPeriods(ctx context.Context, transactionType enums.TransactionType) ([]Period, error)
	Insert(ctx context.Context, tier *models.PriceTier) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type service struct {
	client   *db.Client
	repo     Repository
	versions LedgerVersioner
	metrics  *metrics.ReportMetrics
	now      func() time.Time
}

// NewService wires the price tier store.
func NewService(client *db.Client, repo Repository, versions LedgerVersioner, m *metrics.ReportMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{
		client:   client,
		repo:     repo,
		versions: versions,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Resolve(ctx context.Context, transactionType enums.TransactionType, date time.Time) (decimal.Decimal, error) {
	if !transactionType.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", transactionType))
	}
	return s.repo.ResolvePrice(ctx, transactionType, date)
}

func (s *service) ListPeriods(ctx context.Context, transactionType enums.TransactionType) ([]Period, error) {
	if !transactionType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", transactionType))
	}

	tiers, err := s.repo.ListByType(ctx, transactionType)
	if err != nil {
		return nil, err
	}

	periods := make([]Period, 0, len(tiers))
	for i, tier := range tiers {
		end := s.now().Truncate(24 * time.Hour)
		if i > 0 {
			// tiers are newest-first, so the previous element supersedes this one
			end = tiers[i-1].StartDate.AddDate(0, 0, -1)
		}
		periods = append(periods, Period{
			TierID: tier.ID,
			Type:   tier.TransactionType,
			Start:  tier.StartDate,
			End:    end,
			Price:  tier.PricePerReaction,
		})
	}
	return periods, nil
}

func (s *service) Insert(ctx context.Context, tier *models.PriceTier) error {
	if tier == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price tier is required")
	}
	if !tier.TransactionType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", tier.TransactionType))
	}
	if tier.StartDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date is required")
	}
	if tier.PricePerReaction.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price per reaction must be non-negative")
	}

	var repriced int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Create(ctx, tier); err != nil {
			if db.IsUniqueViolation(err, models.UniquePeriodConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err,
					"a price tier for this type and start date already exists")
			}
			return err
		}

		next, err := repo.NextStart(ctx, tier.TransactionType, tier.StartDate)
		if err != nil {
			return err
		}

		repriced, err = repo.Reprice(ctx, tier.TransactionType, tier.PricePerReaction, tier.StartDate, next)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.AddRecomputedRows("insert", repriced)
	if s.versions != nil {
		s.versions.Bump(ctx)
	}
	return nil
}

func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier id is required")
	}

	var repriced int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		tier, err := repo.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price tier not found")
		}
		if err != nil {
			return err
		}

		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		// rows in the removed interval fall back to the preceding tier, or to
		// zero when the removed tier was the first
		fallback, err := repo.ResolvePrice(ctx, tier.TransactionType, tier.StartDate.AddDate(0, 0, -1))
		if err != nil {
			return err
		}

		next, err := repo.NextStart(ctx, tier.TransactionType, tier.StartDate)
		if err != nil {
			return err
		}

		repriced, err = repo.Reprice(ctx, tier.TransactionType, fallback, tier.StartDate, next)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.AddRecomputedRows("remove", repriced)
	if s.versions != nil {
		s.versions.Bump(ctx)
	}
	return nil
}
