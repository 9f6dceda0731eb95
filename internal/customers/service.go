package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
)

// Detail is the per-customer view: identity, their royalties report over the
// requested window, the fulfilled transactions inside it, and whatever is
// still in progress regardless of the window.
type Detail struct {
	Customer   models.Customer      `json:"customer"`
	Repeat     bool                 `json:"repeat"`
	Report     *reports.Report      `json:"report"`
	Fulfilled  []models.Transaction `json:"fulfilled"`
	InProgress []models.Transaction `json:"in_progress"`
}

type Service interface {
	List(ctx context.Context) ([]models.Customer, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	Detail(ctx context.Context, id uuid.UUID, from, to *time.Time) (*Detail, error)
}

type service struct {
	repo    Repository
	ledger  transactions.Repository
	reports reports.Service
}

func NewService(repo Repository, ledger transactions.Repository, reporter reports.Service) (Service, error) {
	if repo == nil || ledger == nil || reporter == nil {
		return nil, fmt.Errorf("customer repository, ledger, and reporter required")
	}
	return &service{repo: repo, ledger: ledger, reports: reporter}, nil
}

func (s *service) List(ctx context.Context) ([]models.Customer, error) {
	return s.repo.List(ctx)
}

func (s *service) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.repo.ListVendors(ctx)
}

func (s *service) Detail(ctx context.Context, id uuid.UUID, from, to *time.Time) (*Detail, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return nil, err
	}

	filter := transactions.Filter{
		CustomerID: &id,
		FromDate:   from,
		ToDate:     to,
	}

	report, err := s.reports.GetRoyaltiesReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	fulfilled, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	inProgress, err := s.ledger.List(ctx, transactions.Filter{
		CustomerID:     &id,
		InProgressOnly: true,
	})
	if err != nil {
		return nil, err
	}

	dates, err := s.ledger.DistinctDateCount(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Customer:   *customer,
		Repeat:     dates > 1,
		Report:     report,
		Fulfilled:  fulfilled,
		InProgress: inProgress,
	}, nil
}
