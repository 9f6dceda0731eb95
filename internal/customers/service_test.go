package customers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  institution_name TEXT NOT NULL DEFAULT '',
  institution_type TEXT NOT NULL DEFAULT 'other',
  contact_name TEXT,
  country TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	vendors := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_name TEXT,
  country TEXT,
  website TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	txns := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  transaction_type TEXT NOT NULL,
  customer_id TEXT,
  vendor_id TEXT,
  number_of_reactions INTEGER NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  ip_related_price NUMERIC NOT NULL DEFAULT 0,
  base_ip_related_price_per_reaction NUMERIC NOT NULL DEFAULT 0,
  date DATETIME NOT NULL,
  date_samples_arrived DATETIME,
  date_fulfilled DATETIME,
  date_paid DATETIME,
  quote_id TEXT,
  order_id TEXT,
  invoice_id TEXT,
  description TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(customers).Error)
	require.NoError(t, conn.Exec(vendors).Error)
	require.NoError(t, conn.Exec(txns).Error)
	return conn
}

func newCustomerService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	ledger := transactions.NewRepository(conn)
	reporter, err := reports.NewService(ledger, nil, nil)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), ledger, reporter)
	require.NoError(t, err)
	return svc
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seedCustomerRow(t *testing.T, conn *gorm.DB, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(customer).Error)
	return customer
}

func seedTxn(t *testing.T, conn *gorm.DB, customerID uuid.UUID, date time.Time, fulfilled *time.Time) {
	t.Helper()

	txn := &models.Transaction{
		ID:              uuid.New(),
		TransactionType: enums.TransactionTypeKit,
		CustomerID:      &customerID,
		TotalPrice:      decimal.NewFromInt(100),
		IPRelatedPrice:  decimal.NewFromInt(100),
		Date:            date,
		DateFulfilled:   fulfilled,
	}
	require.NoError(t, conn.Create(txn).Error)
}

func TestListOrdersByName(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc := newCustomerService(t, conn)

	seedCustomerRow(t, conn, "Zenith Labs")
	seedCustomerRow(t, conn, "Apex Bio")

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Apex Bio", list[0].Name)
	assert.Equal(t, "Zenith Labs", list[1].Name)
}

func TestDetailComposesReportAndLists(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc := newCustomerService(t, conn)

	customer := seedCustomerRow(t, conn, "Helix Bio")
	other := seedCustomerRow(t, conn, "Other Lab")

	seedTxn(t, conn, customer.ID, day(2024, 1, 1), ptr(day(2024, 1, 10)))
	seedTxn(t, conn, customer.ID, day(2024, 2, 1), ptr(day(2024, 2, 10)))
	seedTxn(t, conn, customer.ID, day(2024, 3, 1), nil)
	seedTxn(t, conn, other.ID, day(2024, 1, 1), ptr(day(2024, 1, 5)))

	detail, err := svc.Detail(context.Background(), customer.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Helix Bio", detail.Customer.Name)
	assert.True(t, detail.Repeat)
	require.NotNil(t, detail.Report)
	// report covers this customer only, including the unfulfilled row
	assert.Equal(t, int64(3), detail.Report.Count)
	assert.Len(t, detail.Fulfilled, 3)
	require.Len(t, detail.InProgress, 1)
	assert.Nil(t, detail.InProgress[0].DateFulfilled)
}

func TestDetailWindowed(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc := newCustomerService(t, conn)

	customer := seedCustomerRow(t, conn, "Windowed Lab")
	seedTxn(t, conn, customer.ID, day(2024, 1, 1), ptr(day(2024, 1, 10)))
	seedTxn(t, conn, customer.ID, day(2024, 6, 1), ptr(day(2024, 6, 10)))

	detail, err := svc.Detail(context.Background(), customer.ID,
		ptr(day(2024, 1, 1)), ptr(day(2024, 3, 31)))
	require.NoError(t, err)

	assert.Len(t, detail.Fulfilled, 1)
	assert.Equal(t, int64(1), detail.Report.Count)
	// repeat looks at the whole ledger, not the window
	assert.True(t, detail.Repeat)
}

func TestDetailNotFound(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc := newCustomerService(t, conn)

	_, err := svc.Detail(context.Background(), uuid.New(), nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
