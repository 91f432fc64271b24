package handler

import "github.com/hrdashboard/hr-api/internal/core/domain"

// --- Request types ---

type registerRequest struct {
	EmployeeID       string                   `json:"employeeId"    validate:"required"`
	Email            string                   `json:"email"         validate:"required,email"`
	Password         string                   `json:"password"      validate:"required,min=6"`
	FirstName        string                   `json:"firstName"     validate:"required"`
	LastName         string                   `json:"lastName"      validate:"required"`
	Position         string                   `json:"position"      validate:"required"`
	DateOfJoining    string                   `json:"dateOfJoining" validate:"required,isodate"`
	Role             string                   `json:"role"          validate:"omitempty,oneof=admin hr manager employee"`
	Department       string                   `json:"department"`
	Manager          string                   `json:"manager"`
	Phone            string                   `json:"phone"`
	DateOfBirth      string                   `json:"dateOfBirth"   validate:"omitempty,isodate"`
	Address          *domain.Address          `json:"address"`
	EmergencyContact *domain.EmergencyContact `json:"emergencyContact"`
	Salary           *domain.Salary           `json:"salary"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest holds the self-service fields. Absent fields are left unchanged.
type profileRequest struct {
	FirstName        *string                  `json:"firstName"   validate:"omitempty,min=1"`
	LastName         *string                  `json:"lastName"    validate:"omitempty,min=1"`
	Phone            *string                  `json:"phone"`
	DateOfBirth      *string                  `json:"dateOfBirth" validate:"omitempty,isodate"`
	Address          *domain.Address          `json:"address"`
	EmergencyContact *domain.EmergencyContact `json:"emergencyContact"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// updateEmployeeRequest accepts every updatable field. Which ones are applied
// depends on the caller; identity fields such as email are not accepted at all.
type updateEmployeeRequest struct {
	profileRequest
	Position         *string             `json:"position"`
	Department       *string             `json:"department"`
	Manager          *string             `json:"manager"`
	Role             *string             `json:"role"`
	Status           *string             `json:"status"`
	Salary           *domain.Salary      `json:"salary"`
	BankDetails      *domain.BankDetails `json:"bankDetails"`
	OnboardingStatus *string             `json:"onboardingStatus"`
}

type listEmployeesQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	Department string `query:"department"`
	Status     string `query:"status"`
	Search     string `query:"search"`
}

// --- Response types ---

// accountResponse is the public view of an account. The password hash is
// never serialised.
type accountResponse struct {
	*domain.Account
	FullName string `json:"fullName"`
}

type authResponse struct {
	Token   string           `json:"token,omitempty"`
	Account *accountResponse `json:"account"`
}

type listEmployeesResponse struct {
	Employees  []*accountResponse `json:"employees"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error envelope every failed request receives.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}
