package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-genomics/revenue-tracker/internal/customers"
	"github.com/veridian-genomics/revenue-tracker/internal/pricing"
	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	pkgauth "github.com/veridian-genomics/revenue-tracker/pkg/auth"
	"github.com/veridian-genomics/revenue-tracker/pkg/config"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubTransactionService struct{}

func (stubTransactionService) Save(context.Context, *models.Transaction) error { return nil }
func (stubTransactionService) Get(context.Context, uuid.UUID) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}
func (stubTransactionService) List(context.Context, transactions.Filter) ([]models.Transaction, error) {
	return nil, nil
}

type stubPricingService struct{}

func (stubPricingService) Resolve(context.Context, enums.TransactionType, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (stubPricingService) ListPeriods(context.Context, enums.TransactionType) ([]pricing.Period, error) {
	return nil, nil
}
func (stubPricingService) Insert(context.Context, *models.PriceTier) error { return nil }
func (stubPricingService) Remove(context.Context, uuid.UUID) error         { return nil }

type stubReportService struct{}

func (stubReportService) GetRoyaltiesReport(context.Context, transactions.Filter) (*reports.Report, error) {
	return &reports.Report{}, nil
}
func (stubReportService) ResolveWindow(context.Context, reports.PeriodQuery) (*time.Time, *time.Time, error) {
	return nil, nil, nil
}
func (stubReportService) ActiveQuarters(context.Context) ([]reports.YearQuarters, error) {
	return nil, nil
}

type stubCustomerService struct{}

func (stubCustomerService) List(context.Context) ([]models.Customer, error)      { return nil, nil }
func (stubCustomerService) ListVendors(context.Context) ([]models.Vendor, error) { return nil, nil }
func (stubCustomerService) Detail(context.Context, uuid.UUID, *time.Time, *time.Time) (*customers.Detail, error) {
	return &customers.Detail{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "revenue-tracker"
	cfg.JWT.ExpirationMinutes = 60

	handler := NewRouter(
		cfg,
		nil,
		stubPinger{},
		nil,
		stubTransactionService{},
		stubPricingService{},
		stubReportService{},
		stubCustomerService{},
	)
	return handler, cfg.JWT
}

func TestHealthEndpointsAreUnauthenticated(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/royalties", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIAcceptsMintedToken(t *testing.T) {
	handler, jwtCfg := newTestRouter(t)

	token, err := pkgauth.MintOperatorToken(jwtCfg, time.Now().UTC(), "finance-ops")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/royalties", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body, "data")
}

func TestMetricsEndpointExposed(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
