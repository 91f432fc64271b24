package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

type stubEmployeeService struct {
	listFn      func(ctx context.Context, caller *domain.Account, in ports.ListEmployeesInput) (*ports.ListEmployeesResult, error)
	getFn       func(ctx context.Context, caller *domain.Account, id string) (*domain.Account, error)
	updateFn    func(ctx context.Context, caller *domain.Account, id string, in ports.UpdateEmployeeInput) (*domain.Account, error)
	terminateFn func(ctx context.Context, caller *domain.Account, id string) error
}

func (s *stubEmployeeService) List(ctx context.Context, caller *domain.Account, in ports.ListEmployeesInput) (*ports.ListEmployeesResult, error) {
	return s.listFn(ctx, caller, in)
}

func (s *stubEmployeeService) Get(ctx context.Context, caller *domain.Account, id string) (*domain.Account, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubEmployeeService) Update(ctx context.Context, caller *domain.Account, id string, in ports.UpdateEmployeeInput) (*domain.Account, error) {
	return s.updateFn(ctx, caller, id, in)
}

func (s *stubEmployeeService) Terminate(ctx context.Context, caller *domain.Account, id string) error {
	return s.terminateFn(ctx, caller, id)
}

var hrCaller = &domain.Account{ID: "hr-1", Role: domain.RoleHR}

func TestEmployeeHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubEmployeeService{
		listFn: func(ctx context.Context, caller *domain.Account, in ports.ListEmployeesInput) (*ports.ListEmployeesResult, error) {
			if in.Page != 2 || in.Limit != 5 || in.Department != "eng" || in.Status != "active" || in.Search != "ada" {
				t.Fatalf("unexpected query mapping: %+v", in)
			}
			return &ports.ListEmployeesResult{
				Items:      []*domain.Account{{ID: "acc-1", FirstName: "Ada", LastName: "Lovelace", PasswordHash: "hash"}},
				Total:      6,
				Page:       2,
				Limit:      5,
				TotalPages: 2,
			}, nil
		},
	}
	handler := NewEmployeeHandler(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employees?page=2&limit=5&department=eng&status=active&search=ada", nil)
	c := e.NewContext(req, rec)
	c.Set("account", hrCaller)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Employees []map[string]any `json:"employees"`
		Total     int64            `json:"total"`
		Page      int              `json:"page"`
		Pages     int              `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 6 || resp.Page != 2 || resp.Pages != 2 || len(resp.Employees) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if resp.Employees[0]["fullName"] != "Ada Lovelace" {
		t.Fatalf("expected fullName, got %v", resp.Employees[0]["fullName"])
	}
	if _, leaked := resp.Employees[0]["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestEmployeeHandler_List_BadQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewEmployeeHandler(&stubEmployeeService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/employees?page=abc", nil), httptest.NewRecorder())
	c.Set("account", hrCaller)

	if err := handler.List(c); err == nil {
		t.Fatal("expected error for non-numeric page")
	}
}

func TestEmployeeHandler_Get(t *testing.T) {
	e := newTestEcho()
	stub := &stubEmployeeService{
		getFn: func(ctx context.Context, caller *domain.Account, id string) (*domain.Account, error) {
			if id == "missing" {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{ID: id, Email: "ada@example.com"}, nil
		},
	}
	handler := NewEmployeeHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("acc-1")
	c.Set("account", hrCaller)

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "acc-1" {
		t.Fatalf("unexpected id %v", resp["id"])
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")
	c.Set("account", hrCaller)
	if err := handler.Get(c); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestEmployeeHandler_Update_MapsFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubEmployeeService{
		updateFn: func(ctx context.Context, caller *domain.Account, id string, in ports.UpdateEmployeeInput) (*domain.Account, error) {
			if id != "acc-2" {
				t.Fatalf("unexpected id %s", id)
			}
			if in.Profile.FirstName == nil || *in.Profile.FirstName != "Grace" {
				t.Fatalf("profile not mapped: %+v", in.Profile)
			}
			if in.Role == nil || *in.Role != domain.RoleManager {
				t.Fatalf("role not mapped")
			}
			if in.Status == nil || *in.Status != domain.StatusInactive {
				t.Fatalf("status not mapped")
			}
			if in.ManagerID == nil || *in.ManagerID != "acc-9" {
				t.Fatalf("manager not mapped")
			}
			if in.OnboardingStatus == nil || *in.OnboardingStatus != domain.OnboardingCompleted {
				t.Fatalf("onboarding not mapped")
			}
			if in.Salary == nil || in.Salary.Basic != 5000 {
				t.Fatalf("salary not mapped")
			}
			if in.Position != nil || in.Department != nil {
				t.Fatalf("absent fields must stay nil")
			}
			return &domain.Account{ID: id, FirstName: "Grace", Role: domain.RoleManager}, nil
		},
	}
	handler := NewEmployeeHandler(stub)

	body := `{"firstName":"Grace","role":"manager","status":"inactive","manager":"acc-9","onboardingStatus":"completed","salary":{"basic":5000}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/", body), rec)
	c.SetParamNames("id")
	c.SetParamValues("acc-2")
	c.Set("account", hrCaller)

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEmployeeHandler_Update_InvalidDate(t *testing.T) {
	e := newTestEcho()
	handler := NewEmployeeHandler(&stubEmployeeService{})

	c := e.NewContext(jsonRequest(http.MethodPut, "/", `{"dateOfBirth":"yesterday"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("acc-2")
	c.Set("account", hrCaller)

	err := handler.Update(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 1 || ve.Fields[0].Field != "dateOfBirth" {
		t.Fatalf("expected dateOfBirth validation failure, got %v", err)
	}
}

func TestEmployeeHandler_Terminate(t *testing.T) {
	e := newTestEcho()
	var terminated string
	stub := &stubEmployeeService{
		terminateFn: func(ctx context.Context, caller *domain.Account, id string) error {
			terminated = id
			return nil
		},
	}
	handler := NewEmployeeHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("acc-3")
	c.Set("account", &domain.Account{ID: "admin-1", Role: domain.RoleAdmin})

	if err := handler.Terminate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if terminated != "acc-3" || rec.Code != http.StatusOK {
		t.Fatalf("unexpected result: id=%s code=%d", terminated, rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "employee terminated" {
		t.Fatalf("unexpected message %q", resp["message"])
	}
}

func TestEmployeeHandler_NoAccount(t *testing.T) {
	e := newTestEcho()
	handler := NewEmployeeHandler(&stubEmployeeService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := handler.List(c); err != domain.ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
