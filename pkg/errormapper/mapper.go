package errormapper

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/apperr"
)

const (
	CodeValidation        = "VALIDATION_FAIL"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "CONFLICT"
	CodeBusy              = "BUSY"
	CodeSystem            = "SYS_ERR"
)

var sentinels = []struct {
	err    error
	code   string
	status int
}{
	{apperr.ErrNotFound, CodeNotFound, http.StatusNotFound},
	{apperr.ErrForbidden, CodeForbidden, http.StatusForbidden},
	{apperr.ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
	{apperr.ErrInvalidTransition, CodeInvalidTransition, http.StatusConflict},
	{apperr.ErrConflict, CodeConflict, http.StatusConflict},
	{apperr.ErrBusy, CodeBusy, http.StatusTooManyRequests},
}

// Map translates a domain error into an HTTP status and a stable error code.
func Map(err error) (status int, code string) {
	if _, ok := apperr.AsValidation(err); ok {
		return http.StatusBadRequest, CodeValidation
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, CodeSystem
}

// Respond writes err as a JSON error body. Internal errors are logged and
// replaced by a generic message.
func Respond(c echo.Context, err error) error {
	status, code := Map(err)
	body := echo.Map{"code": code, "error": err.Error()}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			slog.String("path", c.Path()), slog.Any("error", err))
		body["error"] = "internal error"
	}
	if ve, ok := apperr.AsValidation(err); ok {
		body["error"] = "validation failed"
		body["fields"] = ve.Fields
	}
	return c.JSON(status, body)
}
