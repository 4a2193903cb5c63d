package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its id and
// expiry.  Access tokens are sent in the Authorization header when calling
// protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	ID    string    // the jti claim
	Exp   time.Time // the UTC expiration time
}

// AccessClaims is the verified content of an access token.
type AccessClaims struct {
	UserID    uint64
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ErrInvalidToken is returned for any token that fails parsing or
// verification.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// carries sub (user id), jti (random uuid), iat and exp.
func NewAccessToken(secret string, userID uint64, ttl time.Duration, now time.Time) (AccessToken, error) {
	now = now.UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: id, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and returns its claims.  Only
// HS256 is accepted and exp is mandatory.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	var rc jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &rc, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return AccessClaims{}, errors.Join(ErrInvalidToken, err)
	}
	uid, err := strconv.ParseUint(rc.Subject, 10, 64)
	if err != nil || uid == 0 || rc.ID == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	out := AccessClaims{UserID: uid, ID: rc.ID, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	return out, nil
}
