package handler

import (
	"time"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// --- Request → Service input ---

// toRegisterInput assumes req already passed validation.
func toRegisterInput(req registerRequest) ports.RegisterInput {
	in := ports.RegisterInput{
		EmployeeID:       req.EmployeeID,
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Position:         req.Position,
		Role:             domain.Role(req.Role),
		Department:       req.Department,
		ManagerID:        req.Manager,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Salary:           req.Salary,
	}
	in.DateOfJoining, _ = parseISODate(req.DateOfJoining)
	if req.DateOfBirth != "" {
		in.DateOfBirth = optionalDate(&req.DateOfBirth)
	}
	return in
}

func toProfileInput(req profileRequest) ports.ProfileInput {
	return ports.ProfileInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		DateOfBirth:      optionalDate(req.DateOfBirth),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
	}
}

func toUpdateEmployeeInput(req updateEmployeeRequest) ports.UpdateEmployeeInput {
	in := ports.UpdateEmployeeInput{
		Profile:     toProfileInput(req.profileRequest),
		Position:    req.Position,
		Department:  req.Department,
		ManagerID:   req.Manager,
		Salary:      req.Salary,
		BankDetails: req.BankDetails,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.Status != nil {
		status := domain.AccountStatus(*req.Status)
		in.Status = &status
	}
	if req.OnboardingStatus != nil {
		onboarding := domain.OnboardingStatus(*req.OnboardingStatus)
		in.OnboardingStatus = &onboarding
	}
	return in
}

func optionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseISODate(*s)
	if err != nil {
		return nil
	}
	return &t
}

// --- Service result → HTTP response ---

func toAccountResponse(a *domain.Account) *accountResponse {
	if a == nil {
		return nil
	}
	return &accountResponse{Account: a, FullName: a.FullName()}
}

func toListResponse(r *ports.ListEmployeesResult) listEmployeesResponse {
	items := make([]*accountResponse, 0, len(r.Items))
	for _, a := range r.Items {
		items = append(items, toAccountResponse(a))
	}
	return listEmployeesResponse{
		Employees:  items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}
