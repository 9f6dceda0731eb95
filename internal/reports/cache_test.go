package reports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

func TestNilCacheIsSafe(t *testing.T) {
	cache := NewCache(nil, 0, nil)
	require.Nil(t, cache)

	// every operation degrades to a no-op / miss
	cache.Bump(context.Background())
	cache.Store(context.Background(), transactions.Filter{}, &Report{})
	report, ok := cache.Lookup(context.Background(), transactions.Filter{})
	assert.False(t, ok)
	assert.Nil(t, report)
}

func TestFilterDigestIsStable(t *testing.T) {
	customer := uuid.New()
	kit := enums.TransactionTypeKit
	filter := transactions.Filter{
		FromDate:        ptr(day(2024, 1, 1)),
		ToDate:          ptr(day(2024, 3, 31)),
		CustomerID:      &customer,
		TransactionType: &kit,
	}

	first, err := filterDigest(filter)
	require.NoError(t, err)
	second, err := filterDigest(filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFilterDigestDistinguishesFilters(t *testing.T) {
	base := transactions.Filter{FromDate: ptr(day(2024, 1, 1))}

	baseDigest, err := filterDigest(base)
	require.NoError(t, err)

	widened := base
	widened.IncludeInProgress = true
	widenedDigest, err := filterDigest(widened)
	require.NoError(t, err)
	assert.NotEqual(t, baseDigest, widenedDigest)

	service := enums.TransactionTypeService
	typed := base
	typed.TransactionType = &service
	typedDigest, err := filterDigest(typed)
	require.NoError(t, err)
	assert.NotEqual(t, baseDigest, typedDigest)
}
