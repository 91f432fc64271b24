package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps (page-1)*limit well inside int64 for the store skip.
	maxPage = 1_000_000
)

// EmployeeService implements the employee-record use cases. Route-level role
// checks happen in the HTTP middleware; this service applies ownership and
// scoping rules that depend on the target record.
type EmployeeService struct {
	repo   ports.AccountRepository
	access ports.AccessService
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewEmployeeService(repo ports.AccountRepository, access ports.AccessService, audit ports.AuditRecorder, log zerolog.Logger) *EmployeeService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &EmployeeService{repo: repo, access: access, audit: audit, log: log}
}

// List returns a page of employees. Managers only ever see their direct reports.
func (s *EmployeeService) List(ctx context.Context, caller *domain.Account, in ports.ListEmployeesInput) (*ports.ListEmployeesResult, error) {
	if caller == nil {
		return nil, domain.ErrInvalidToken
	}

	filter := ports.AccountFilter{
		Department: in.Department,
		Status:     in.Status,
		Search:     in.Search,
		Page:       in.Page,
		Limit:      in.Limit,
	}
	switch {
	case domain.HasUnrestrictedEmployeeAccess(caller.Role):
	case caller.Role == domain.RoleManager:
		filter.ManagerID = caller.ID
	default:
		return nil, domain.ErrForbidden
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		filter.Page = maxPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListEmployeesResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single employee record the caller is allowed to see.
func (s *EmployeeService) Get(ctx context.Context, caller *domain.Account, id string) (*domain.Account, error) {
	return s.access.AuthorizeEmployee(ctx, caller, domain.RouteEmployeeRead, id)
}

// Update applies the subset of in that the caller may change. Profile fields
// are open to anyone allowed onto the record; organisational, payroll and
// status fields need employee.administer. Everything else is ignored.
func (s *EmployeeService) Update(ctx context.Context, caller *domain.Account, id string, in ports.UpdateEmployeeInput) (*domain.Account, error) {
	target, err := s.access.AuthorizeEmployee(ctx, caller, domain.RouteEmployeeUpdate, id)
	if err != nil {
		return nil, err
	}

	upd := profileUpdate(in.Profile)
	if domain.Permits(caller.Role, domain.RouteEmployeeAdminister) {
		if err := s.applyAdministrative(ctx, caller, target, in, &upd); err != nil {
			return nil, err
		}
	}
	if upd.Empty() {
		return target, nil
	}

	updated, err := s.repo.Update(ctx, target.ID, upd)
	if err != nil {
		return nil, err
	}

	s.audit.Record(auditEvent(ctx, domain.AuditEmployeeUpdate, caller.ID, target.ID, outcomeSuccess))
	s.log.Info().
		Str("actor_id", caller.ID).
		Str("account_id", target.ID).
		Msg("employee updated")
	return updated, nil
}

func (s *EmployeeService) applyAdministrative(ctx context.Context, caller, target *domain.Account, in ports.UpdateEmployeeInput, upd *ports.AccountUpdate) error {
	var fields []domain.FieldError
	if in.Role != nil && !in.Role.Valid() {
		fields = append(fields, domain.FieldError{Field: "role", Message: "role must be one of: admin hr manager employee"})
	}
	if in.Status != nil && !in.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "status must be one of: active inactive terminated"})
	}
	if in.OnboardingStatus != nil {
		switch *in.OnboardingStatus {
		case domain.OnboardingPending, domain.OnboardingInProgress, domain.OnboardingCompleted:
		default:
			fields = append(fields, domain.FieldError{Field: "onboardingStatus", Message: "onboardingStatus must be one of: pending in-progress completed"})
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}

	// Terminating through an update needs the same capability as DELETE.
	if in.Status != nil && *in.Status == domain.StatusTerminated &&
		target.Status != domain.StatusTerminated &&
		!domain.Permits(caller.Role, domain.RouteEmployeeTerminate) {
		return domain.ErrForbidden
	}

	if in.ManagerID != nil {
		if err := checkManager(ctx, s.repo, target.ID, *in.ManagerID); err != nil {
			return err
		}
	}

	upd.Position = in.Position
	upd.Department = in.Department
	upd.ManagerID = in.ManagerID
	upd.Role = in.Role
	upd.Status = in.Status
	upd.Salary = in.Salary
	upd.BankDetails = in.BankDetails
	upd.OnboardingStatus = in.OnboardingStatus
	return nil
}

// Terminate marks the employee as terminated. Records are never removed.
func (s *EmployeeService) Terminate(ctx context.Context, caller *domain.Account, id string) error {
	target, err := s.access.AuthorizeEmployee(ctx, caller, domain.RouteEmployeeTerminate, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetStatus(ctx, target.ID, domain.StatusTerminated); err != nil {
		return err
	}

	s.audit.Record(auditEvent(ctx, domain.AuditTerminate, caller.ID, target.ID, outcomeSuccess))
	s.log.Info().
		Str("actor_id", caller.ID).
		Str("account_id", target.ID).
		Msg("employee terminated")
	return nil
}
