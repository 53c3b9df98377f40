package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/service"
)

// errorBody is the envelope for every error response.
type errorBody struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// validationErrorBody wraps per-field validation failures.
type validationErrorBody struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	Errors    map[string]string `json:"errors"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{
		Status:    status,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(dateTimeFormat),
	})
}

func validationJSON(c echo.Context, errs map[string]string) error {
	return c.JSON(http.StatusBadRequest, validationErrorBody{
		Status:    http.StatusBadRequest,
		Message:   "Validation failed",
		Timestamp: time.Now().UTC().Format(dateTimeFormat),
		Errors:    errs,
	})
}

// serviceError maps service layer failures onto HTTP responses.
// Business rule violations surface their message with a 400, missing
// rows become a 404 with notFoundMsg, and anything else is reported
// as an opaque 500.
func serviceError(c echo.Context, err error, notFoundMsg string) error {
	if service.IsBusiness(err) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, service.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, notFoundMsg)
	}
	c.Logger().Errorf("request failed: %v", err)
	return errorJSON(c, http.StatusInternalServerError, "An unexpected error occurred")
}
