package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// stubAccess resolves tokens from a fixed map and applies the real
// capability table for route checks.
type stubAccess struct {
	tokens map[string]*domain.Account
	seen   []string
	err    error
}

func (s *stubAccess) Authenticate(_ context.Context, token string) (*domain.Account, error) {
	s.seen = append(s.seen, token)
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	a, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return a, nil
}

func (s *stubAccess) AuthorizeRoute(_ context.Context, caller *domain.Account, class domain.RouteClass) error {
	return domain.DecideRoute(caller, class).Err()
}

func (s *stubAccess) AuthorizeEmployee(context.Context, *domain.Account, domain.RouteClass, string) (*domain.Account, error) {
	return nil, domain.ErrForbidden
}

var _ ports.AccessService = (*stubAccess)(nil)

func newStubAccess() *stubAccess {
	return &stubAccess{tokens: map[string]*domain.Account{
		"admin-token": {ID: "acc-1", Role: domain.RoleAdmin, Status: domain.StatusActive},
		"emp-token":   {ID: "acc-2", Role: domain.RoleEmployee, Status: domain.StatusActive},
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newStubAccess())(func(c echo.Context) error {
		called = true
		account := AccountFrom(c)
		if account == nil || account.ID != "acc-1" || account.Role != domain.RoleAdmin {
			t.Fatalf("account not set: %+v", account)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"missing header", "", domain.ErrMissingToken},
		{"wrong scheme", "Token admin-token", domain.ErrInvalidToken},
		{"empty bearer", "Bearer ", domain.ErrMissingToken},
		{"unknown token", "Bearer not-a-token", domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth(newStubAccess())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if err := handler(c); err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer emp-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newStubAccess())(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("expected lowercase scheme to be accepted, got %v", err)
	}
}

func TestOptionalAuth(t *testing.T) {
	access := newStubAccess()

	t.Run("anonymous passes through", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

		called := false
		handler := OptionalAuth(access)(func(c echo.Context) error {
			called = true
			if AccountFrom(c) != nil {
				t.Fatalf("anonymous request must not carry an account")
			}
			return nil
		})
		if err := handler(c); err != nil || !called {
			t.Fatalf("expected pass-through, got %v", err)
		}
	})

	t.Run("valid token sets account", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		c := e.NewContext(req, httptest.NewRecorder())

		handler := OptionalAuth(access)(func(c echo.Context) error {
			if a := AccountFrom(c); a == nil || a.ID != "acc-1" {
				t.Fatalf("account not set")
			}
			return nil
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	})

	t.Run("unverifiable token continues anonymous", func(t *testing.T) {
		for _, header := range []string{"Bearer stale", "Bearer ", "Basic abc"} {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", header)
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			handler := OptionalAuth(access)(func(c echo.Context) error {
				called = true
				if AccountFrom(c) != nil {
					t.Fatalf("%q: account must not be set", header)
				}
				return nil
			})
			if err := handler(c); err != nil || !called {
				t.Fatalf("%q: expected anonymous pass-through, got %v", header, err)
			}
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		failing := newStubAccess()
		failing.err = errors.New("mongo: connection reset")

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		c := e.NewContext(req, httptest.NewRecorder())

		handler := OptionalAuth(failing)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})
		if err := handler(c); err != failing.err {
			t.Fatalf("expected store error, got %v", err)
		}
	})
}

func TestRequestMeta(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-123")
	c := e.NewContext(req, rec)

	handler := RequestMeta()(func(c echo.Context) error {
		meta := ports.RequestMetaFrom(c.Request().Context())
		if meta.RemoteIP != "203.0.113.7" || meta.RequestID != "req-123" {
			t.Fatalf("unexpected meta: %+v", meta)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}
