package ports

import (
	"context"
	"time"

	"github.com/hrdashboard/hr-api/internal/core/domain"
)

// AccountUpdate lists the fields a single atomic update may set.
// Nil pointers are left untouched. An empty ManagerID clears the reference.
type AccountUpdate struct {
	FirstName        *string
	LastName         *string
	Phone            *string
	DateOfBirth      *time.Time
	Address          *domain.Address
	EmergencyContact *domain.EmergencyContact
	Position         *string
	Department       *string
	ManagerID        *string
	Role             *domain.Role
	Status           *domain.AccountStatus
	Salary           *domain.Salary
	BankDetails      *domain.BankDetails
	OnboardingStatus *domain.OnboardingStatus
}

// Empty reports whether the update would change nothing.
func (u AccountUpdate) Empty() bool {
	return u == AccountUpdate{}
}

// AccountFilter carries the query parameters for listing accounts.
type AccountFilter struct {
	ManagerID  string // non-empty = direct reports of this manager only
	Department string
	Status     string
	Search     string // case-insensitive partial match on names, email, employee id, position
	Page       int    // 1-based
	Limit      int
}

// AccountRepository is the credential store.
type AccountRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// FindByEmail matches the normalized (lowercase) address.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error)
	// Update applies upd atomically and returns the stored document afterwards.
	Update(ctx context.Context, id string, upd AccountUpdate) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetStatus(ctx context.Context, id string, status domain.AccountStatus) error
	// List returns a page of accounts matching filter and the total count.
	List(ctx context.Context, filter AccountFilter) ([]*domain.Account, int64, error)
}
