package ports

import (
	"context"

	"github.com/hrdashboard/hr-api/internal/core/domain"
)

// ListEmployeesInput carries the list endpoint parameters.
type ListEmployeesInput struct {
	Department string
	Status     string
	Search     string
	Page       int
	Limit      int
}

// ListEmployeesResult is a page of employee records.
type ListEmployeesResult struct {
	Items      []*domain.Account
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UpdateEmployeeInput holds every field a client may send. Which of them are
// applied depends on the caller's capabilities; the rest are ignored.
type UpdateEmployeeInput struct {
	Profile          ProfileInput
	Position         *string
	Department       *string
	ManagerID        *string
	Role             *domain.Role
	Status           *domain.AccountStatus
	Salary           *domain.Salary
	BankDetails      *domain.BankDetails
	OnboardingStatus *domain.OnboardingStatus
}

// EmployeeService defines use-case operations over employee records.
type EmployeeService interface {
	List(ctx context.Context, caller *domain.Account, in ListEmployeesInput) (*ListEmployeesResult, error)
	Get(ctx context.Context, caller *domain.Account, id string) (*domain.Account, error)
	Update(ctx context.Context, caller *domain.Account, id string, in UpdateEmployeeInput) (*domain.Account, error)
	Terminate(ctx context.Context, caller *domain.Account, id string) error
}
