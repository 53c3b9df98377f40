package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/service"
)

// StaffHandler serves the municipal staff endpoints for working the
// request queue.
type StaffHandler struct {
	svc *service.RequestService
}

// NewStaffHandler constructs a StaffHandler.  svc must be non-nil.
func NewStaffHandler(svc *service.RequestService) *StaffHandler {
	if svc == nil {
		panic("nil service passed to NewStaffHandler")
	}
	return &StaffHandler{svc: svc}
}

// ListRequests handles GET /api/staff/requests.  An optional
// municipality query parameter filters by exact municipality name.
// Results are newest first.
func (h *StaffHandler) ListRequests(c echo.Context) error {
	requests, err := h.svc.List(c.Request().Context(), c.QueryParam("municipality"))
	if err != nil {
		return serviceError(c, err, "Service requests not found")
	}
	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toResponse(req))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus handles PUT /api/staff/requests/:id/status.  The
// transition is validated against the status graph; violations come
// back as 400 with the rule that was broken.
func (h *StaffHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return errorJSON(c, http.StatusBadRequest, "Invalid request id")
	}

	var body updateStatusBody
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	newStatus, errs := body.validate()
	if errs != nil {
		return validationJSON(c, errs)
	}

	req, err := h.svc.UpdateStatus(c.Request().Context(), id, newStatus, body.Notes)
	if err != nil {
		return serviceError(c, err, fmt.Sprintf("Service request not found with id: %d", id))
	}
	return c.JSON(http.StatusOK, toResponse(req))
}
