package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/apperror"
)

// errorBody is the uniform failure envelope.  Exception and Trace are
// filled only in debug mode.
type errorBody struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Exception string              `json:"exception,omitempty"`
	Trace     []string            `json:"trace,omitempty"`
}

// ErrorHandler renders every error returned by handlers and middleware as
// an errorBody.  apperror kinds choose the status, echo's own HTTP errors
// keep theirs, anything else is a 500 with a generic message.
func ErrorHandler(debug bool, log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errorBody{Message: "Server Error"}

		var he *echo.HTTPError
		if ae, ok := apperror.As(err); ok {
			status = ae.Status()
			body.Message = ae.Message
			body.Errors = ae.Fields
		} else if errors.As(err, &he) {
			status = he.Code
			body.Message = fmt.Sprint(he.Message)
			if he.Code == http.StatusNotFound {
				body.Message = "Not found"
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", status, "err", err)
		}
		if debug {
			body.Exception, body.Trace = describe(err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error("error response not written", "err", werr)
		}
	}
}

// describe returns the Go type of the innermost error and the message of
// every error in the wrap chain, outermost first.
func describe(err error) (string, []string) {
	var trace []string
	root := err
	for e := err; e != nil; e = errors.Unwrap(e) {
		trace = append(trace, e.Error())
		root = e
	}
	return fmt.Sprintf("%T", root), trace
}
