// Package middleware provides HTTP middleware for the API: request
// logging, a Redis token bucket rate limiter and a Redis response
// cache.
package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs end-to-end request duration and response size
// for basic observability.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			log.Printf(
				"method=%s path=%s status=%d bytes=%d dur=%dms",
				c.Request().Method, c.Request().URL.RequestURI(),
				res.Status, res.Size, time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
