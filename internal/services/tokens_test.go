package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "simahasiswa",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	signed, exp, err := svc.CreateAccessToken("uid-1", "budi@example.com", "user")
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	token, claims, err := svc.ParseToken(signed)
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "uid-1", claims["sub"])
	assert.Equal(t, "budi@example.com", claims["email"])
	assert.Equal(t, "user", claims["role"])
	assert.Equal(t, "access", claims["typ"])
}

func TestRefreshTokenHasRefreshType(t *testing.T) {
	svc := testTokenService()

	signed, err := svc.CreateRefreshToken("uid-1")
	require.NoError(t, err)

	_, claims, err := svc.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims["typ"])
	assert.Equal(t, "uid-1", claims["sub"])
}

func TestParseRejectsWrongSecret(t *testing.T) {
	svc := testTokenService()
	signed, _, err := svc.CreateAccessToken("uid-1", "budi@example.com", "user")
	require.NoError(t, err)

	other := testTokenService()
	other.Secret = []byte("different-secret")
	_, _, err = other.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	svc := testTokenService()
	svc.Issuer = "someone-else"
	signed, _, err := svc.CreateAccessToken("uid-1", "budi@example.com", "user")
	require.NoError(t, err)

	_, _, err = testTokenService().ParseToken(signed)
	assert.Error(t, err)
}

func TestPairIssuesBothTokens(t *testing.T) {
	svc := testTokenService()

	pair, err := svc.Pair("uid-1", "budi@example.com", "user")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}
