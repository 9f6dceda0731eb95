package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
)

func TestParseQueryDate(t *testing.T) {
	r := httptest.NewRequest("GET", "/?from=2024-03-31", nil)

	value, err := ParseQueryDate(r, "from")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "2024-03-31", value.Format("2006-01-02"))

	missing, err := ParseQueryDate(r, "to")
	require.NoError(t, err)
	assert.Nil(t, missing)

	r = httptest.NewRequest("GET", "/?from=31-03-2024", nil)
	_, err = ParseQueryDate(r, "from")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryTransactionType(t *testing.T) {
	r := httptest.NewRequest("GET", "/?type=kit", nil)

	value, err := ParseQueryTransactionType(r, "type")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, enums.TransactionTypeKit, *value)

	r = httptest.NewRequest("GET", "/?type=subscription", nil)
	_, err = ParseQueryTransactionType(r, "type")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryQuarterIsCaseInsensitive(t *testing.T) {
	r := httptest.NewRequest("GET", "/?quarter=q2", nil)

	value, err := ParseQueryQuarter(r, "quarter")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, enums.QuarterQ2, *value)
}

func TestParseQueryIntBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/?year=2024", nil)

	value, err := ParseQueryInt(r, "year", 0, 1990, 2100)
	require.NoError(t, err)
	assert.Equal(t, 2024, value)

	r = httptest.NewRequest("GET", "/?year=1200", nil)
	_, err = ParseQueryInt(r, "year", 0, 1990, 2100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	r = httptest.NewRequest("GET", "/", nil)
	value, err = ParseQueryInt(r, "year", 0, 1990, 2100)
	require.NoError(t, err)
	assert.Equal(t, 0, value)
}
