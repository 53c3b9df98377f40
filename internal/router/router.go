// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/zeremonos/waste-collection/internal/handler"
)

// RegisterRoutes registers the health check endpoint on the provided
// Echo instance.  Load balancers and monitoring probe it directly.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCitizen registers the anonymous citizen endpoints under
// /api/requests.  A request is addressed by the access token issued
// on creation; no account or session is involved.
func RegisterCitizen(e *echo.Echo, h *handler.CitizenHandler) {
	g := e.Group("/api/requests")
	g.POST("", h.CreateRequest)
	g.GET("/:token", h.GetRequest)
	g.DELETE("/:token", h.CancelRequest)
}

// RegisterStaff registers the staff endpoints under
// /api/staff/requests for listing the queue and moving requests
// through the status graph.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler) {
	g := e.Group("/api/staff/requests")
	g.GET("", h.ListRequests)
	g.PUT("/:id/status", h.UpdateStatus)
}

// RegisterMunicipalities registers the municipality directory
// endpoint.  cache may be nil when Redis is unavailable; the route
// then serves every request from the upstream directory.
func RegisterMunicipalities(e *echo.Echo, h *handler.MunicipalityHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/api/municipalities", h.ListMunicipalities, cache)
		return
	}
	e.GET("/api/municipalities", h.ListMunicipalities)
}
