package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/auth"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Authenticator verifies a raw bearer token; auth.Provider implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (utils.AccessClaims, error)
}

const msgUnauthenticated = "Unauthenticated."

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// rejects revoked tokens and stores the user id and claims in the context
// under UserIDKey and ClaimsKey.  Failures are returned as apperror values
// so the HTTP error handler renders the usual envelope.
func JWTAuth(authn Authenticator, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return apperror.Unauthenticated(msgUnauthenticated, nil)
			}

			claims, err := authn.Authenticate(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				if errors.Is(err, utils.ErrInvalidToken) || errors.Is(err, auth.ErrRevokedToken) {
					log.Debug("token rejected", "path", c.Path(), "err", err)
					return apperror.Unauthenticated(msgUnauthenticated, err)
				}
				log.Error("token verification failed", "err", err)
				return apperror.Internal("Failed to verify token", err)
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}
