package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/middleware"
)

// requestTimeout bounds every database round trip started by a handler.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID returns the authenticated user's id stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperror.Unauthenticated("Unauthenticated.", nil)
	}
	return id, nil
}

// pathID parses the :id parameter.  A malformed id can never match a row,
// so it is reported as not found.
func pathID(c echo.Context, notFound string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(notFound)
	}
	return id, nil
}

// bind decodes the JSON body into req.
func bind(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return apperror.BadRequest("Malformed request body.")
	}
	return nil
}

// pagination reads page and per_page leniently: values that do not parse
// fall back to the defaults.
func pagination(c echo.Context) dto.Pagination {
	var p dto.Pagination
	_ = echo.QueryParamsBinder(c).FailFast(false).Int("page", &p.Page).Int("per_page", &p.PerPage).BindError()
	return p.Normalize()
}
