package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

func newTestEmployeeService(f *orgFixture, audit *recordingAudit) *EmployeeService {
	access := NewAccessService(f.repo, NewTokenService("secret", "", time.Hour), nil, zerolog.Nop())
	if audit == nil {
		return NewEmployeeService(f.repo, access, nil, zerolog.Nop())
	}
	return NewEmployeeService(f.repo, access, audit, zerolog.Nop())
}

func TestEmployeeService_List_Scoping(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	res, err := svc.List(context.Background(), f.boss, ports.ListEmployeesInput{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if res.Total != 1 || len(res.Items) != 1 || res.Items[0].ID != f.alice.ID {
		t.Fatalf("manager must see only direct reports, got %+v", res.Items)
	}
	if f.repo.lastList.ManagerID != f.boss.ID {
		t.Fatalf("expected manager scope in filter, got %+v", f.repo.lastList)
	}

	res, err = svc.List(context.Background(), f.hr, ports.ListEmployeesInput{})
	if err != nil {
		t.Fatalf("hr list: %v", err)
	}
	if res.Total != 6 {
		t.Fatalf("hr must see every account, got %d", res.Total)
	}

	if _, err := svc.List(context.Background(), f.alice, ports.ListEmployeesInput{}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for employee, got %v", err)
	}
	if _, err := svc.List(context.Background(), nil, ports.ListEmployeesInput{}); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for missing caller, got %v", err)
	}
}

func TestEmployeeService_List_Pagination(t *testing.T) {
	f := newOrgFixture()
	for i := 0; i < 20; i++ {
		f.repo.seed(&domain.Account{
			EmployeeID: fmt.Sprintf("X%02d", i),
			Email:      fmt.Sprintf("x%02d@example.com", i),
			Role:       domain.RoleEmployee,
			Department: "ops",
		})
	}
	svc := newTestEmployeeService(f, nil)

	res, err := svc.List(context.Background(), f.admin, ports.ListEmployeesInput{Department: "ops", Page: 2, Limit: 8})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 20 || res.TotalPages != 3 || len(res.Items) != 8 || res.Page != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d page=%d", res.Total, res.TotalPages, len(res.Items), res.Page)
	}

	res, err = svc.List(context.Background(), f.admin, ports.ListEmployeesInput{Page: -1, Limit: 1000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Page != 1 || res.Limit != maxPageSize {
		t.Fatalf("expected normalized page/limit, got %d/%d", res.Page, res.Limit)
	}

	res, _ = svc.List(context.Background(), f.admin, ports.ListEmployeesInput{})
	if res.Limit != defaultPageSize {
		t.Fatalf("expected default limit %d, got %d", defaultPageSize, res.Limit)
	}
}

func TestEmployeeService_List_HugePage(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	res, err := svc.List(context.Background(), f.admin, ports.ListEmployeesInput{Page: math.MaxInt, Limit: maxPageSize})
	if err != nil {
		t.Fatalf("huge page must not fail: %v", err)
	}
	if res.Page != maxPage || len(res.Items) != 0 || res.Total != 6 {
		t.Fatalf("expected empty capped page, got page=%d items=%d total=%d", res.Page, len(res.Items), res.Total)
	}
	if skip := int64(f.repo.lastList.Page-1) * int64(f.repo.lastList.Limit); skip < 0 {
		t.Fatalf("skip overflowed: %d", skip)
	}
}

func TestEmployeeService_Get(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	got, err := svc.Get(context.Background(), f.boss, f.alice.ID)
	if err != nil || got.ID != f.alice.ID {
		t.Fatalf("manager must read direct report: %v", err)
	}
	if _, err := svc.Get(context.Background(), f.alice, f.boss.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEmployeeService_Update_EmployeeOnlyChangesProfile(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	phone := "555-0101"
	role := domain.RoleAdmin
	status := domain.StatusInactive
	position := "CTO"
	updated, err := svc.Update(context.Background(), f.alice, f.alice.ID, ports.UpdateEmployeeInput{
		Profile:  ports.ProfileInput{Phone: &phone},
		Role:     &role,
		Status:   &status,
		Position: &position,
		Salary:   &domain.Salary{Basic: 1_000_000},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != phone {
		t.Fatalf("profile field not applied")
	}
	if updated.Role != domain.RoleEmployee || updated.Status != domain.StatusActive || updated.Position == position || updated.Salary != nil {
		t.Fatalf("privileged fields must be ignored for employees: %+v", updated)
	}
}

func TestEmployeeService_Update_ManagerOnReport(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	dept := "sales"
	first := "Alicia"
	updated, err := svc.Update(context.Background(), f.boss, f.alice.ID, ports.UpdateEmployeeInput{
		Profile:    ports.ProfileInput{FirstName: &first},
		Department: &dept,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != first || updated.Department != "eng" {
		t.Fatalf("manager may only change profile fields: %+v", updated)
	}

	if _, err := svc.Update(context.Background(), f.boss, f.peer.ID, ports.UpdateEmployeeInput{Profile: ports.ProfileInput{FirstName: &first}}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-report, got %v", err)
	}
}

func TestEmployeeService_Update_Administrative(t *testing.T) {
	f := newOrgFixture()
	audit := &recordingAudit{}
	svc := newTestEmployeeService(f, audit)

	role := domain.RoleManager
	position := "Lead"
	manager := f.peer.ID
	onboarding := domain.OnboardingCompleted
	updated, err := svc.Update(context.Background(), f.hr, f.alice.ID, ports.UpdateEmployeeInput{
		Role:             &role,
		Position:         &position,
		ManagerID:        &manager,
		OnboardingStatus: &onboarding,
		Salary:           &domain.Salary{Basic: 90000, Allowances: 5000},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != role || updated.Position != position || updated.ManagerID != manager ||
		updated.OnboardingStatus != onboarding || updated.Salary == nil || updated.Salary.Basic != 90000 {
		t.Fatalf("administrative fields not applied: %+v", updated)
	}

	actions := audit.actions()
	if len(actions) != 1 || actions[0] != domain.AuditEmployeeUpdate {
		t.Fatalf("unexpected audit trail: %v", actions)
	}
}

func TestEmployeeService_Update_TerminateNeedsTerminateCapability(t *testing.T) {
	f := newOrgFixture()
	audit := &recordingAudit{}
	svc := newTestEmployeeService(f, audit)

	terminated := domain.StatusTerminated
	if _, err := svc.Update(context.Background(), f.hr, f.alice.ID, ports.UpdateEmployeeInput{Status: &terminated}); err != domain.ErrForbidden {
		t.Fatalf("hr terminating via update: expected ErrForbidden, got %v", err)
	}
	stored, _ := f.repo.FindByID(context.Background(), f.alice.ID)
	if stored.Status != domain.StatusActive {
		t.Fatalf("rejected update must not change status, got %s", stored.Status)
	}
	if len(audit.actions()) != 0 {
		t.Fatalf("rejected update must not be audited")
	}

	inactive := domain.StatusInactive
	if _, err := svc.Update(context.Background(), f.hr, f.alice.ID, ports.UpdateEmployeeInput{Status: &inactive}); err != nil {
		t.Fatalf("hr may still deactivate: %v", err)
	}

	updated, err := svc.Update(context.Background(), f.admin, f.alice.ID, ports.UpdateEmployeeInput{Status: &terminated})
	if err != nil || updated.Status != domain.StatusTerminated {
		t.Fatalf("admin terminating via update: %v", err)
	}
}

func TestEmployeeService_Update_InvalidValues(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	role := domain.Role("owner")
	status := domain.AccountStatus("retired")
	_, err := svc.Update(context.Background(), f.admin, f.alice.ID, ports.UpdateEmployeeInput{Role: &role, Status: &status})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected two field failures, got %v", err)
	}
}

func TestEmployeeService_Update_ManagerCycle(t *testing.T) {
	f := newOrgFixture()
	svc := newTestEmployeeService(f, nil)

	// alice manages intern, so intern cannot become alice's manager.
	manager := f.intern.ID
	if _, err := svc.Update(context.Background(), f.admin, f.alice.ID, ports.UpdateEmployeeInput{ManagerID: &manager}); err != domain.ErrManagerCycle {
		t.Fatalf("expected ErrManagerCycle, got %v", err)
	}

	// boss is above intern two levels up.
	manager = f.intern.ID
	if _, err := svc.Update(context.Background(), f.admin, f.boss.ID, ports.UpdateEmployeeInput{ManagerID: &manager}); err != domain.ErrManagerCycle {
		t.Fatalf("expected ErrManagerCycle for indirect cycle, got %v", err)
	}

	self := f.alice.ID
	if _, err := svc.Update(context.Background(), f.admin, f.alice.ID, ports.UpdateEmployeeInput{ManagerID: &self}); err != domain.ErrManagerCycle {
		t.Fatalf("expected ErrManagerCycle for self reference, got %v", err)
	}

	missing := "acc-999"
	if _, err := svc.Update(context.Background(), f.admin, f.alice.ID, ports.UpdateEmployeeInput{ManagerID: &missing}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown manager, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), f.alice.ID)
	if stored.ManagerID != f.boss.ID {
		t.Fatalf("rejected updates must not change the manager, got %s", stored.ManagerID)
	}
}

func TestEmployeeService_Update_EmptyIsNoop(t *testing.T) {
	f := newOrgFixture()
	audit := &recordingAudit{}
	svc := newTestEmployeeService(f, audit)

	got, err := svc.Update(context.Background(), f.alice, f.alice.ID, ports.UpdateEmployeeInput{})
	if err != nil || got.ID != f.alice.ID {
		t.Fatalf("empty update: %v", err)
	}
	if len(audit.actions()) != 0 {
		t.Fatalf("empty update must not be audited")
	}
}

func TestEmployeeService_Terminate(t *testing.T) {
	f := newOrgFixture()
	audit := &recordingAudit{}
	svc := newTestEmployeeService(f, audit)

	if err := svc.Terminate(context.Background(), f.admin, f.alice.ID); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	stored, err := f.repo.FindByID(context.Background(), f.alice.ID)
	if err != nil {
		t.Fatalf("terminated record must remain: %v", err)
	}
	if stored.Status != domain.StatusTerminated {
		t.Fatalf("expected terminated status, got %s", stored.Status)
	}

	if err := svc.Terminate(context.Background(), f.admin, "acc-999"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	actions := audit.actions()
	if len(actions) != 1 || actions[0] != domain.AuditTerminate {
		t.Fatalf("unexpected audit trail: %v", actions)
	}
}
