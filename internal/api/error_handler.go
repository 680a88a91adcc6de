package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/service"
	"github.com/abaila/abaila/internal/storage"
	"github.com/abaila/abaila/internal/util"
)

// ErrorHandler maps service and storage errors to HTTP statuses in one
// place so handlers can return errors untranslated.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, reason := statusForError(err)

		if status == http.StatusInternalServerError {
			log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
		}

		if jsonErr := c.JSON(status, map[string]string{"message": reason}); jsonErr != nil {
			log.Errorw("failed to write json response", "error", jsonErr)
		}
	}
}

func statusForError(err error) (int, string) {
	var respErr util.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status, respErr.Msg
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrRefreshMissing):
		return http.StatusUnauthorized, "refresh token required"
	case errors.Is(err, service.ErrRefreshInvalid):
		return http.StatusForbidden, "invalid refresh token"
	case errors.Is(err, service.ErrTokenExpired), errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, service.ErrInvalidLogin):
		return http.StatusNotFound, "either username or passwords are incorrect"
	case errors.Is(err, service.ErrProfileConflict):
		return http.StatusConflict, "email or username already in use"
	case errors.Is(err, storage.ErrUserExists):
		return http.StatusBadRequest, "user already exists"
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
