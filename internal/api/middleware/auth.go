package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// accountKey is the echo context key holding the authenticated *domain.Account.
const accountKey = "account"

// Auth requires a valid bearer token. The token's subject is re-read from the
// store on every request, so deactivation and role changes apply at once.
func Auth(access ports.AccessService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			account, err := access.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(accountKey, account)
			return next(c)
		}
	}
}

// OptionalAuth attaches the caller's account when the request carries a
// credential that verifies. Requests without one, or with one that does not
// verify, continue as anonymous; the handler decides whether that is enough.
// Store failures are still returned.
func OptionalAuth(access ports.AccessService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return next(c)
			}
			account, err := access.Authenticate(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(accountKey, account)
			case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrMissingToken):
			default:
				return err
			}
			return next(c)
		}
	}
}

// AccountFrom returns the account stored by Auth, or nil for anonymous requests.
func AccountFrom(c echo.Context) *domain.Account {
	account, _ := c.Get(accountKey).(*domain.Account)
	return account
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domain.ErrMissingToken
	}

	scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}
