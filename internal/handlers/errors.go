package handlers

import (
	"errors"
	"net/http"

	"partsportal/internal/common"
	"partsportal/internal/odata"
	"partsportal/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// sendServiceError maps a service error onto the {error, details} response
func sendServiceError(c echo.Context, err error) error {
	var backendErr *odata.BackendError
	var decodeErr *odata.DecodeError

	switch {
	case errors.As(err, &backendErr):
		return common.SendError(c, backendErr.StatusCode, backendErr.Body, nil)
	case errors.As(err, &decodeErr):
		log.Errorf("backend response could not be decoded: %v", decodeErr.Err)
		return common.SendError(c, http.StatusInternalServerError, "Failed to parse backend response", decodeErr.RawBody)
	case errors.Is(err, odata.ErrMissingToken):
		return common.SendError(c, http.StatusUnauthorized, "Missing bearer token", nil)
	case errors.Is(err, services.ErrInvalidInstanceID), errors.Is(err, services.ErrInvalidAttachmentKey):
		return common.SendError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		log.Errorf("request failed: %v", err)
		return common.SendError(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

// HTTPErrorHandler renders echo errors in the same shape as handler errors
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	} else {
		log.Errorf("unhandled error: %v", err)
		message = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = common.SendError(c, status, message, nil)
	}
	if err != nil {
		log.Errorf("failed to write error response: %v", err)
	}
}
