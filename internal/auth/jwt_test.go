package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := NewJWTConfig("test-secret")

	token, err := GenerateToken(cfg, "alice")
	require.NoError(t, err)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.NoError(t, ValidatePeer(cfg, token, "alice"))
}

func TestValidatePeerRejectsOtherName(t *testing.T) {
	cfg := NewJWTConfig("test-secret")
	token, err := GenerateToken(cfg, "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, ValidatePeer(cfg, token, "mallory"), ErrNameMismatch)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(NewJWTConfig("one"), "alice")
	require.NoError(t, err)

	_, err = ValidateToken(NewJWTConfig("two"), token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := NewJWTConfig("test-secret")
	cfg.TTL = -time.Minute

	token, err := GenerateToken(cfg, "alice")
	require.NoError(t, err)

	_, err = ValidateToken(cfg, token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsAudience(t *testing.T) {
	issuing := NewJWTConfig("test-secret")
	issuing.Audience = "elsewhere"
	token, err := GenerateToken(issuing, "alice")
	require.NoError(t, err)

	_, err = ValidateToken(NewJWTConfig("test-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
