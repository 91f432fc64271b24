package ports

import (
	"context"
	"time"

	"github.com/hrdashboard/hr-api/internal/core/domain"
)

// RegisterInput carries everything needed to provision an account.
type RegisterInput struct {
	EmployeeID       string
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Position         string
	DateOfJoining    time.Time
	Role             domain.Role // empty = default for the registration path
	Department       string
	ManagerID        string
	Phone            string
	DateOfBirth      *time.Time
	Address          *domain.Address
	EmergencyContact *domain.EmergencyContact
	Salary           *domain.Salary
}

// ProfileInput is the self-service subset of an account.
type ProfileInput struct {
	FirstName        *string
	LastName         *string
	Phone            *string
	DateOfBirth      *time.Time
	Address          *domain.Address
	EmergencyContact *domain.EmergencyContact
}

// AuthService covers registration, login and the caller's own account.
type AuthService interface {
	// Register provisions an account. caller is nil for anonymous requests,
	// which only succeed while the system is not yet initialized.
	Register(ctx context.Context, caller *domain.Account, in RegisterInput) (*domain.Account, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Me(ctx context.Context, caller *domain.Account) (*domain.Account, error)
	UpdateProfile(ctx context.Context, caller *domain.Account, in ProfileInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, caller *domain.Account, currentPassword, newPassword string) error
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(accountID string) (string, error)
	// Verify returns the embedded account id or domain.ErrInvalidToken.
	Verify(token string) (string, error)
}

// AccessService is the request-time access-control core.
type AccessService interface {
	// Authenticate resolves a raw bearer token to an active account.
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
	AuthorizeRoute(ctx context.Context, caller *domain.Account, class domain.RouteClass) error
	// AuthorizeEmployee applies the ownership rule and returns the target record.
	AuthorizeEmployee(ctx context.Context, caller *domain.Account, class domain.RouteClass, targetID string) (*domain.Account, error)
}

// BootstrapLock serializes first-account provisioning across instances.
type BootstrapLock interface {
	// Acquire returns false when another instance holds the lock.
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
