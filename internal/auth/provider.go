// Package auth issues, verifies and invalidates bearer tokens.  Tokens are
// stateless HS256 JWTs; invalidation before expiry is recorded by token id
// in a repository.TokenRepository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRevokedToken is returned for a token that was logged out or refreshed.
	ErrRevokedToken = errors.New("token revoked")
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOa8sGqn4VQ8cT1k5Wm8o1KpZ0VQ3kB2e"

// Provider bundles the dependencies of token handling.
type Provider struct {
	secret string
	ttl    time.Duration
	users  repository.UserRepository
	tokens repository.TokenRepository
	now    func() time.Time
}

func NewProvider(secret string, ttl time.Duration, users repository.UserRepository, tokens repository.TokenRepository) *Provider {
	return &Provider{secret: secret, ttl: ttl, users: users, tokens: tokens, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (p *Provider) TTL() time.Duration { return p.ttl }

// Attempt checks the credentials and issues a token for the matching user.
func (p *Provider) Attempt(ctx context.Context, email, password string) (utils.AccessToken, *model.User, error) {
	u, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.VerifyPassword(dummyHash, password)
			return utils.AccessToken{}, nil, ErrInvalidCredentials
		}
		return utils.AccessToken{}, nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}
	tok, err := p.Issue(u.ID)
	if err != nil {
		return utils.AccessToken{}, nil, err
	}
	return tok, u, nil
}

// Issue signs a new token for userID.
func (p *Provider) Issue(userID uint64) (utils.AccessToken, error) {
	return utils.NewAccessToken(p.secret, userID, p.ttl, p.now())
}

// Authenticate verifies raw and rejects revoked tokens.
func (p *Provider) Authenticate(ctx context.Context, raw string) (utils.AccessClaims, error) {
	claims, err := utils.ParseAccessToken(p.secret, raw)
	if err != nil {
		return utils.AccessClaims{}, err
	}
	revoked, err := p.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return utils.AccessClaims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return utils.AccessClaims{}, ErrRevokedToken
	}
	return claims, nil
}

// Invalidate revokes the token described by claims until it expires.
func (p *Provider) Invalidate(ctx context.Context, claims utils.AccessClaims) error {
	return p.tokens.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt)
}

// Refresh revokes the current token and issues a replacement for the same
// user.
func (p *Provider) Refresh(ctx context.Context, claims utils.AccessClaims) (utils.AccessToken, error) {
	if err := p.Invalidate(ctx, claims); err != nil {
		return utils.AccessToken{}, fmt.Errorf("revoke current token: %w", err)
	}
	return p.Issue(claims.UserID)
}
