package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/directory"
)

// MunicipalityHandler serves the municipality directory used by the
// request submission form.
type MunicipalityHandler struct {
	dir *directory.Client
}

// NewMunicipalityHandler constructs a MunicipalityHandler.  dir must
// be non-nil.
func NewMunicipalityHandler(dir *directory.Client) *MunicipalityHandler {
	if dir == nil {
		panic("nil directory client passed to NewMunicipalityHandler")
	}
	return &MunicipalityHandler{dir: dir}
}

// ListMunicipalities handles GET /api/municipalities.  Names come
// from the upstream directory; codes are derived deterministically
// from the name.
func (h *MunicipalityHandler) ListMunicipalities(c echo.Context) error {
	municipalities, err := h.dir.Municipalities(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("municipality directory unavailable: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
	return c.JSON(http.StatusOK, municipalities)
}
