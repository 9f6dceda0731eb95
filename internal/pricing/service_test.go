package pricing

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

	"github.com/veridian-genomics/revenue-tracker/pkg/db"
	"github.com/veridian-genomics/revenue-tracker/pkg/db/models"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	priceTiers := `
CREATE TABLE IF NOT EXISTS price_tiers (
  id TEXT PRIMARY KEY,
  transaction_type TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  price_per_reaction NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (transaction_type, start_date)
);`
	transactions := `
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
	require.NoError(t, conn.Exec(priceTiers).Error)
	require.NoError(t, conn.Exec(transactions).Error)
	return conn
}

func newPricingService(t *testing.T, conn *gorm.DB) (Service, *countingVersioner) {
	t.Helper()

	versions := &countingVersioner{}
	svc, err := NewService(db.NewFromConn(conn), NewRepository(conn), versions, nil)
	require.NoError(t, err)
	return svc, versions
}

type countingVersioner struct {
	bumps int
}

func (c *countingVersioner) Bump(context.Context) {
	c.bumps++
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func insertTier(t *testing.T, svc Service, txType enums.TransactionType, start time.Time, price int64) *models.PriceTier {
	t.Helper()

	tier := &models.PriceTier{
		TransactionType:  txType,
		StartDate:        start,
		PricePerReaction: decimal.NewFromInt(price),
	}
	require.NoError(t, svc.Insert(context.Background(), tier))
	return tier
}

func seedLedgerRow(t *testing.T, conn *gorm.DB, txType enums.TransactionType, date time.Time, base int64) uuid.UUID {
	t.Helper()

	txn := &models.Transaction{
		ID:                            uuid.New(),
		TransactionType:               txType,
		Date:                          date,
		BaseIPRelatedPricePerReaction: decimal.NewFromInt(base),
	}
	require.NoError(t, conn.Create(txn).Error)
	return txn.ID
}

func basePrice(t *testing.T, conn *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var txn models.Transaction
	require.NoError(t, conn.Where("id = ?", id).First(&txn).Error)
	return txn.BaseIPRelatedPricePerReaction
}

func TestResolvePicksLatestCoveringTier(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	price, err := svc.Resolve(context.Background(), enums.TransactionTypeKit, day(2023, 7, 1))
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(40)))

	price, err = svc.Resolve(context.Background(), enums.TransactionTypeKit, day(2024, 1, 1))
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(50)))

	// no tier covers dates before the first start
	price, err = svc.Resolve(context.Background(), enums.TransactionTypeKit, day(2022, 1, 1))
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestResolveIsTypeScoped(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	price, err := svc.Resolve(context.Background(), enums.TransactionTypeService, day(2024, 6, 1))
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestInsertRepricesCoveredInterval(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, versions := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	insertTier(t, svc, enums.TransactionTypeKit, day(2025, 1, 1), 60)

	before := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2023, 6, 1), 40)
	inside := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2024, 6, 1), 40)
	after := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2025, 6, 1), 60)
	otherType := seedLedgerRow(t, conn, enums.TransactionTypeService, day(2024, 6, 1), 40)

	// a tier lands between the existing two; only rows in [2024-01-01,
	// 2025-01-01) of this type move
	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	assert.True(t, basePrice(t, conn, before).Equal(decimal.NewFromInt(40)))
	assert.True(t, basePrice(t, conn, inside).Equal(decimal.NewFromInt(50)))
	assert.True(t, basePrice(t, conn, after).Equal(decimal.NewFromInt(60)))
	assert.True(t, basePrice(t, conn, otherType).Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 3, versions.bumps)
}

func TestInsertNewestTierRepricesOpenEnded(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	row := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2026, 1, 1), 40)

	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	assert.True(t, basePrice(t, conn, row).Equal(decimal.NewFromInt(50)))
}

func TestInsertDuplicatePeriodConflicts(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, versions := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	err := svc.Insert(context.Background(), &models.PriceTier{
		TransactionType:  enums.TransactionTypeKit,
		StartDate:        day(2024, 1, 1),
		PricePerReaction: decimal.NewFromInt(99),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, 1, versions.bumps)

	// same start for a different type is not a duplicate
	err = svc.Insert(context.Background(), &models.PriceTier{
		TransactionType:  enums.TransactionTypeService,
		StartDate:        day(2024, 1, 1),
		PricePerReaction: decimal.NewFromInt(99),
	})
	assert.NoError(t, err)
}

func TestRemoveFallsBackToPrecedingTier(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	middle := insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)
	insertTier(t, svc, enums.TransactionTypeKit, day(2025, 1, 1), 60)

	inside := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2024, 6, 1), 50)
	after := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2025, 6, 1), 60)

	require.NoError(t, svc.Remove(context.Background(), middle.ID))

	assert.True(t, basePrice(t, conn, inside).Equal(decimal.NewFromInt(40)))
	assert.True(t, basePrice(t, conn, after).Equal(decimal.NewFromInt(60)))
}

func TestRemoveFirstTierZeroesInterval(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	first := insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 1, 1), 50)

	row := seedLedgerRow(t, conn, enums.TransactionTypeKit, day(2023, 6, 1), 40)

	require.NoError(t, svc.Remove(context.Background(), first.ID))

	assert.True(t, basePrice(t, conn, row).IsZero())
}

func TestRemoveMissingTier(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	err := svc.Remove(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPeriodsClosesIntervals(t *testing.T) {
	conn := setupPricingTestDB(t)
	svc, _ := newPricingService(t, conn)

	insertTier(t, svc, enums.TransactionTypeKit, day(2023, 1, 1), 40)
	insertTier(t, svc, enums.TransactionTypeKit, day(2024, 3, 1), 50)

	periods, err := svc.ListPeriods(context.Background(), enums.TransactionTypeKit)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	// newest first, open-ended through today
	assert.Equal(t, day(2024, 3, 1), periods[0].Start.UTC())
	assert.False(t, periods[0].End.Before(day(2024, 3, 1)))

	assert.Equal(t, day(2023, 1, 1), periods[1].Start.UTC())
	assert.Equal(t, day(2024, 2, 29), periods[1].End.UTC())
}
