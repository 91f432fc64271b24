package domain

import (
	"strings"
	"time"
)

// Role is the coarse capability tier of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// AccountStatus represents the employment state of an account.
type AccountStatus string

const (
	StatusActive     AccountStatus = "active"
	StatusInactive   AccountStatus = "inactive"
	StatusTerminated AccountStatus = "terminated"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated:
		return true
	}
	return false
}

type OnboardingStatus string

const (
	OnboardingPending    OnboardingStatus = "pending"
	OnboardingInProgress OnboardingStatus = "in-progress"
	OnboardingCompleted  OnboardingStatus = "completed"
)

// MinPasswordLength applies to registration and password changes alike.
const MinPasswordLength = 6

type Address struct {
	Street  string `json:"street,omitempty"  bson:"street,omitempty"`
	City    string `json:"city,omitempty"    bson:"city,omitempty"`
	State   string `json:"state,omitempty"   bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zip_code,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"         bson:"name,omitempty"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"        bson:"phone,omitempty"`
}

type Salary struct {
	Basic      float64 `json:"basic"      bson:"basic"`
	Allowances float64 `json:"allowances" bson:"allowances"`
	Deductions float64 `json:"deductions" bson:"deductions"`
}

type BankDetails struct {
	AccountNumber     string `json:"accountNumber,omitempty"     bson:"account_number,omitempty"`
	BankName          string `json:"bankName,omitempty"          bson:"bank_name,omitempty"`
	IFSCCode          string `json:"ifscCode,omitempty"          bson:"ifsc_code,omitempty"`
	AccountHolderName string `json:"accountHolderName,omitempty" bson:"account_holder_name,omitempty"`
}

// Account is both the login identity and the employee record.
// PasswordHash never leaves the process.
type Account struct {
	ID               string            `json:"id"`
	EmployeeID       string            `json:"employeeId"`
	Email            string            `json:"email"`
	PasswordHash     string            `json:"-"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Role             Role              `json:"role"`
	Status           AccountStatus     `json:"status"`
	ManagerID        string            `json:"manager,omitempty"`
	Department       string            `json:"department,omitempty"`
	Position         string            `json:"position"`
	DateOfJoining    time.Time         `json:"dateOfJoining"`
	DateOfBirth      *time.Time        `json:"dateOfBirth,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	Salary           *Salary           `json:"salary,omitempty"`
	BankDetails      *BankDetails      `json:"bankDetails,omitempty"`
	OnboardingStatus OnboardingStatus  `json:"onboardingStatus"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// FullName mirrors the "fullName" virtual exposed by the dashboard.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// NormalizeEmail lowercases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
