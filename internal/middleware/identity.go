package middleware

// identity.go holds the context keys set by JWTAuth and the accessors
// handlers and other middleware use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/utils"
)

const (
	UserIDKey = "user_id"
	ClaimsKey = "claims"
)

// UserID returns the authenticated user's id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}

// Claims returns the verified token claims of the request.
func Claims(c echo.Context) (utils.AccessClaims, bool) {
	cl, ok := c.Get(ClaimsKey).(utils.AccessClaims)
	return cl, ok
}

// currentUserID renders the user id for cache and rate limit keys, "anon"
// when nobody is authenticated.
func currentUserID(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
