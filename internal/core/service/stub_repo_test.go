package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	seq      int
	countErr error
	lastList ports.AccountFilter
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// seed stores an account as-is, assigning an id when missing.
func (r *stubAccountRepo) seed(a *domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		r.seq++
		a.ID = fmt.Sprintf("acc-%d", r.seq)
	}
	if a.Status == "" {
		a.Status = domain.StatusActive
	}
	r.accounts[a.ID] = cloneAccount(a)
	return cloneAccount(a)
}

func (r *stubAccountRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.accounts)), nil
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email || existing.EmployeeID == a.EmployeeID {
			return nil, domain.ErrDuplicateAccount
		}
	}
	r.seq++
	clone := cloneAccount(a)
	clone.ID = fmt.Sprintf("acc-%d", r.seq)
	r.accounts[clone.ID] = clone
	return cloneAccount(clone), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ExistsByEmailOrEmployeeID(_ context.Context, email, employeeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) || a.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, upd ports.AccountUpdate) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if upd.FirstName != nil {
		a.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		a.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		a.Phone = *upd.Phone
	}
	if upd.DateOfBirth != nil {
		a.DateOfBirth = upd.DateOfBirth
	}
	if upd.Address != nil {
		a.Address = upd.Address
	}
	if upd.EmergencyContact != nil {
		a.EmergencyContact = upd.EmergencyContact
	}
	if upd.Position != nil {
		a.Position = *upd.Position
	}
	if upd.Department != nil {
		a.Department = *upd.Department
	}
	if upd.ManagerID != nil {
		a.ManagerID = *upd.ManagerID
	}
	if upd.Role != nil {
		a.Role = *upd.Role
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.Salary != nil {
		a.Salary = upd.Salary
	}
	if upd.BankDetails != nil {
		a.BankDetails = upd.BankDetails
	}
	if upd.OnboardingStatus != nil {
		a.OnboardingStatus = *upd.OnboardingStatus
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *stubAccountRepo) SetStatus(_ context.Context, id string, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubAccountRepo) List(_ context.Context, f ports.AccountFilter) ([]*domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f

	var matched []*domain.Account
	for _, a := range r.accounts {
		if f.ManagerID != "" && a.ManagerID != f.ManagerID {
			continue
		}
		if f.Department != "" && a.Department != f.Department {
			continue
		}
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			hay := strings.ToLower(strings.Join([]string{a.FirstName, a.LastName, a.Email, a.EmployeeID, a.Position}, " "))
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		matched = append(matched, cloneAccount(a))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// recordingAudit captures recorded events for assertions.
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}
