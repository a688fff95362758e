package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// errorResponse maps an error kind to its status code and public message.
// Ledger failures are checked first since they may wrap a domain error.
func errorResponse(err error) (int, Error) {
	var quota *errs.QuotaExceededError
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, errs.ErrLedgerUnavailable):
		return http.StatusInternalServerError, Error{Code: http.StatusInternalServerError, Message: "Ledger is unavailable"}
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, Error{Code: http.StatusNotFound, Message: err.Error()}
	case errs.IsValidation(err):
		return http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.As(err, &quota):
		return http.StatusTooManyRequests, Error{Code: http.StatusTooManyRequests, Message: err.Error()}
	case errors.As(err, &httpErr):
		return httpErr.Code, Error{Code: httpErr.Code, Message: http.StatusText(httpErr.Code)}
	default:
		return http.StatusInternalServerError, Error{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}
}

// ErrorHandler writes every error returned by a handler or middleware as an Error body.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "Request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		var quota *errs.QuotaExceededError
		if errors.As(err, &quota) {
			setRetryAfter(c, quota.RetryAfter)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "Failed to write error response", "error", err)
		}
	}
}

// setRetryAfter writes d as whole seconds, rounded up. Non-positive durations are skipped.
func setRetryAfter(c echo.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
}
