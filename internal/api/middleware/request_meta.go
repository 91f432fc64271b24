package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// RequestMeta copies the client address and request id into the request
// context so services can attach them to audit events. It must run after
// echo's RequestID middleware.
func RequestMeta() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			meta := ports.RequestMeta{
				RemoteIP:  c.RealIP(),
				RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			}
			c.SetRequest(req.WithContext(ports.WithRequestMeta(req.Context(), meta)))
			return next(c)
		}
	}
}
