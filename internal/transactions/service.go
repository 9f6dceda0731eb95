package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
)

// PriceResolver yields the base price per reaction in effect for a type on a
// given date.
type PriceResolver interface {
	Resolve(ctx context.Context, transactionType enums.TransactionType, date time.Time) (decimal.Decimal, error)
}

// LedgerVersioner is bumped after every write so cached reports built on the
// previous ledger state stop matching.
type LedgerVersioner interface {
	Bump(ctx context.Context)
}

// Service records and amends sales. Every save re-resolves the cached base
// price so the ledger always reflects the tier in effect on the transaction
// date.
type Service interface {
	Save(ctx context.Context, txn *models.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter Filter) ([]models.Transaction, error)
}

type service struct {
	repo     Repository
	prices   PriceResolver
	versions LedgerVersioner
}

// NewService wires a ledger service.
func NewService(repo Repository, prices PriceResolver, versions LedgerVersioner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &service{repo: repo, prices: prices, versions: versions}, nil
}

func (s *service) Save(ctx context.Context, txn *models.Transaction) error {
	if txn == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction is required")
	}
	if !txn.TransactionType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", txn.TransactionType))
	}
	if txn.NumberOfReactions < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "number of reactions must be non-negative")
	}
	if txn.Date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction date is required")
	}

	base, err := s.prices.Resolve(ctx, txn.TransactionType, txn.Date)
	if err != nil {
		return fmt.Errorf("resolving base price: %w", err)
	}
	txn.BaseIPRelatedPricePerReaction = base

	if txn.ID == uuid.Nil {
		err = s.repo.Create(ctx, txn)
	} else {
		err = s.repo.Update(ctx, txn)
	}
	if err != nil {
		return err
	}

	if s.versions != nil {
		s.versions.Bump(ctx)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	return s.repo.List(ctx, filter)
}
