package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/auth"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// TokenProvider is the part of auth.Provider the use-cases depend on.
type TokenProvider interface {
	Attempt(ctx context.Context, email, password string) (utils.AccessToken, *model.User, error)
	Invalidate(ctx context.Context, claims utils.AccessClaims) error
	Refresh(ctx context.Context, claims utils.AccessClaims) (utils.AccessToken, error)
	TTL() time.Duration
}

// TokenType is the only token type issued.
const TokenType = "bearer"

// TokenResult is what login and refresh hand back to the client.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int // seconds
}

func tokenResult(tok utils.AccessToken, ttl time.Duration) TokenResult {
	return TokenResult{AccessToken: tok.Token, TokenType: TokenType, ExpiresIn: int(ttl / time.Second)}
}

type Login struct {
	tokens TokenProvider
	log    *slog.Logger
}

func NewLogin(tokens TokenProvider, log *slog.Logger) *Login {
	return &Login{tokens: tokens, log: log}
}

// Execute exchanges credentials for a token.  Wrong email and wrong
// password fail identically.
func (uc *Login) Execute(ctx context.Context, req dto.LoginRequest) (TokenResult, error) {
	tok, u, err := uc.tokens.Attempt(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			uc.log.Info("login rejected", "email", req.Email)
			return TokenResult{}, apperror.Unauthenticated("Invalid credentials", nil)
		}
		uc.log.Error("login failed", "email", req.Email, "err", err)
		return TokenResult{}, apperror.Internal("Authentication failed", err)
	}
	uc.log.Info("user logged in", "user_id", u.ID)
	return tokenResult(tok, uc.tokens.TTL()), nil
}

type Logout struct {
	tokens TokenProvider
	log    *slog.Logger
}

func NewLogout(tokens TokenProvider, log *slog.Logger) *Logout {
	return &Logout{tokens: tokens, log: log}
}

// Execute invalidates the token the request was authenticated with.
func (uc *Logout) Execute(ctx context.Context, claims utils.AccessClaims) error {
	if err := uc.tokens.Invalidate(ctx, claims); err != nil {
		uc.log.Error("logout failed", "user_id", claims.UserID, "err", err)
		return apperror.Internal("Failed to logout", err)
	}
	uc.log.Info("user logged out", "user_id", claims.UserID)
	return nil
}

type RefreshToken struct {
	tokens TokenProvider
	log    *slog.Logger
}

func NewRefreshToken(tokens TokenProvider, log *slog.Logger) *RefreshToken {
	return &RefreshToken{tokens: tokens, log: log}
}

// Execute replaces the current token with a new one.
func (uc *RefreshToken) Execute(ctx context.Context, claims utils.AccessClaims) (TokenResult, error) {
	tok, err := uc.tokens.Refresh(ctx, claims)
	if err != nil {
		uc.log.Warn("token refresh failed", "user_id", claims.UserID, "err", err)
		return TokenResult{}, apperror.Unauthenticated("Token refresh failed", err)
	}
	uc.log.Info("token refreshed", "user_id", claims.UserID)
	return tokenResult(tok, uc.tokens.TTL()), nil
}
