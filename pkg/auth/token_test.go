package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-genomics/revenue-tracker/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "revenue-tracker",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintOperatorToken(cfg, now, "finance@veridian.test")
	require.NoError(t, err)

	claims, err := ParseOperatorToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "finance@veridian.test", claims.Operator)
	assert.Equal(t, "revenue-tracker", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now().UTC(), "finance@veridian.test")
	require.NoError(t, err)

	bad := cfg
	bad.Secret = "other-secret"
	_, err = ParseOperatorToken(bad, token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now().UTC().Add(-24*time.Hour), "finance@veridian.test")
	require.NoError(t, err)

	_, err = ParseOperatorToken(cfg, token)
	assert.Error(t, err)
}

func TestMintValidatesInputs(t *testing.T) {
	cfg := testJWTConfig()

	_, err := MintOperatorToken(cfg, time.Now(), "")
	assert.Error(t, err)

	cfg.Secret = ""
	_, err = MintOperatorToken(cfg, time.Now(), "finance@veridian.test")
	assert.Error(t, err)
}
