package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hrdashboard/hr-api/internal/api/middleware"
	"github.com/hrdashboard/hr-api/internal/core/domain"
)

// caller returns the account injected by the Auth middleware, or
// ErrMissingToken when the route runs without it.
func caller(c echo.Context) (*domain.Account, error) {
	account := middleware.AccountFrom(c)
	if account == nil {
		return nil, domain.ErrMissingToken
	}
	return account, nil
}
