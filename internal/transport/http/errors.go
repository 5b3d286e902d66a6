package http

import (
	"errors"
	"log/slog"
	"net/http"

	"site_cms/internal/domain/models"
	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/storage"
	"site_cms/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError

	switch {
	case models.IsValidationError(err):
		return http.StatusBadRequest, response.CodeInvalidRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, response.CodeNotFound
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.CodeFileTooLarge
	case errors.As(err, &he):
		return he.Code, statusCode(he.Code)
	default:
		return http.StatusInternalServerError, response.CodeInternalError
	}
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return response.CodeInvalidRequest
	case http.StatusNotFound:
		return response.CodeRouteNotFound
	case http.StatusMethodNotAllowed:
		return response.CodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return response.CodeFileTooLarge
	default:
		return response.CodeInternalError
	}
}

func errorDetails(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	return err.Error()
}

// fail writes the error response for err. Client errors are logged at warn
// level, everything else at error level.
func fail(c echo.Context, log *slog.Logger, err error) error {
	status, code := errorStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Warn("request rejected", slog.Int("status", status), sl.Err(err))
	}

	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}

	return c.JSON(status, response.ErrorResponseWithDetails(code, errorDetails(err)))
}

func badRequest(c echo.Context, details string) error {
	resp := response.ErrInvalidRequestFormat
	if details != "" {
		resp.Details = details
	}

	return c.JSON(http.StatusBadRequest, resp)
}

// parseID reads a UUID path parameter.
func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, models.NewValidationError(name, "must be a valid UUID")
	}

	return id, nil
}

// ErrorHandler renders errors that never reached a handler (unknown routes,
// body limits, recovered panics) in the common error shape.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		_ = fail(c, log.With(slog.String("op", "http.ErrorHandler")), err)
	}
}
