// Package handler contains the Echo HTTP handlers for the waste
// collection API: citizen request submission and tracking, staff
// request management, the municipality directory and a health check.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/service"
)

// CitizenHandler serves the anonymous citizen endpoints.  Citizens
// identify a request solely by its access token; there are no user
// accounts.
type CitizenHandler struct {
	svc *service.RequestService
}

// NewCitizenHandler constructs a CitizenHandler.  svc must be non-nil.
func NewCitizenHandler(svc *service.RequestService) *CitizenHandler {
	if svc == nil {
		panic("nil service passed to NewCitizenHandler")
	}
	return &CitizenHandler{svc: svc}
}

// CreateRequest handles POST /api/requests.  The body is validated
// field by field; all violations are reported together.  On success
// the created request is returned with a 201 and its access token.
func (h *CitizenHandler) CreateRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	in, errs := body.validate(time.Now())
	if errs != nil {
		return validationJSON(c, errs)
	}

	req, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return serviceError(c, err, "Service request not found")
	}
	return c.JSON(http.StatusCreated, toResponse(req))
}

// GetRequest handles GET /api/requests/:token.
func (h *CitizenHandler) GetRequest(c echo.Context) error {
	token := c.Param("token")
	req, err := h.svc.GetByToken(c.Request().Context(), token)
	if err != nil {
		return serviceError(c, err, fmt.Sprintf("Service request not found with token: %s", token))
	}
	return c.JSON(http.StatusOK, toResponse(req))
}

// CancelRequest handles DELETE /api/requests/:token.  Cancellation is
// a soft delete: the request moves to CANCELLED and keeps its history.
func (h *CitizenHandler) CancelRequest(c echo.Context) error {
	token := c.Param("token")
	if err := h.svc.CancelByToken(c.Request().Context(), token); err != nil {
		return serviceError(c, err, fmt.Sprintf("Service request not found with token: %s", token))
	}
	return c.NoContent(http.StatusNoContent)
}
