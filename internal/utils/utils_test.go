package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := NewAccessToken("secret", 42, time.Hour, now)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	claims, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, tok.ID, claims.ID)
	assert.WithinDuration(t, tok.Exp, claims.ExpiresAt, time.Second)
}

func TestParseAccessTokenRejects(t *testing.T) {
	valid, err := NewAccessToken("secret", 1, time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := NewAccessToken("secret", 1, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", ID: "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", valid.Token},
		"expired":      {"secret", expired.Token},
		"alg none":     {"secret", none},
		"garbage":      {"secret", "not-a-jwt"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("123456789", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "123456789"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestPasswordCostFallback(t *testing.T) {
	hash, err := HashPassword("123456789", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
	assert.False(t, VerifyPassword("not-a-hash", "x"))
}
