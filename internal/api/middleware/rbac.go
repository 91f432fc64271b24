package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// Require enforces the role gate for a route class. It must run after Auth.
func Require(access ports.AccessService, class domain.RouteClass) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := access.AuthorizeRoute(c.Request().Context(), AccountFrom(c), class); err != nil {
				return err
			}
			return next(c)
		}
	}
}
