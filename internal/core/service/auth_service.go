package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hrdashboard/hr-api/internal/api/metrics"
	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// AuthService implements registration, login and self-service account operations.
type AuthService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
	lock   ports.BootstrapLock
	audit  ports.AuditRecorder
	log    zerolog.Logger
	cost   int

	// initialized flips once an account is known to exist and never flips back.
	initialized atomic.Bool
	bootstrapMu sync.Mutex

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService wires the service. lock and audit may be nil.
func NewAuthService(
	repo ports.AccountRepository,
	tokens ports.TokenService,
	lock ports.BootstrapLock,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		lock:   lock,
		audit:  audit,
		log:    log,
		cost:   bcrypt.DefaultCost,
	}
}

// Register provisions an account. While no account exists anyone may register
// (the bootstrap path); afterwards the caller must hold account.register.
func (s *AuthService) Register(ctx context.Context, caller *domain.Account, in ports.RegisterInput) (*domain.Account, string, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if err := validateRegistration(in); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "validation_failed").Inc()
		return nil, "", err
	}

	if s.initialized.Load() {
		return s.registerDelegated(ctx, caller, in)
	}

	s.bootstrapMu.Lock()
	defer s.bootstrapMu.Unlock()

	if s.initialized.Load() {
		return s.registerDelegated(ctx, caller, in)
	}

	release, err := s.acquireBootstrapLock(ctx)
	if err != nil {
		return nil, "", err
	}
	defer release()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("register: count accounts: %w", err)
	}
	if count > 0 {
		s.initialized.Store(true)
		return s.registerDelegated(ctx, caller, in)
	}

	if in.Role == "" {
		in.Role = domain.RoleAdmin
	}
	account, token, err := s.create(ctx, in, "bootstrap", "")
	if err != nil {
		return nil, "", err
	}
	s.initialized.Store(true)

	s.log.Info().
		Str("account_id", account.ID).
		Str("role", string(account.Role)).
		Msg("system bootstrapped with first account")
	return account, token, nil
}

func (s *AuthService) registerDelegated(ctx context.Context, caller *domain.Account, in ports.RegisterInput) (*domain.Account, string, error) {
	if domain.DecideRoute(caller, domain.RouteAccountRegister) != domain.Allow {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "forbidden").Inc()
		metrics.AccessDecisionsTotal.WithLabelValues("route", string(domain.RouteAccountRegister), domain.DenyForbidden.String()).Inc()
		var actorID string
		if caller != nil {
			actorID = caller.ID
		}
		s.audit.Record(auditEvent(ctx, domain.AuditRegister, actorID, "", "forbidden"))
		return nil, "", domain.ErrForbidden
	}

	if in.Role == "" {
		in.Role = domain.RoleEmployee
	}
	return s.create(ctx, in, "delegated", caller.ID)
}

// acquireBootstrapLock takes the cross-instance lock when one is configured.
// Losing the race means another instance is provisioning the first account.
func (s *AuthService) acquireBootstrapLock(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	ok, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: bootstrap lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Msg("failed to release bootstrap lock")
		}
	}, nil
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, path, actorID string) (*domain.Account, string, error) {
	exists, err := s.repo.ExistsByEmailOrEmployeeID(ctx, in.Email, in.EmployeeID)
	if err != nil {
		return nil, "", fmt.Errorf("register: duplicate check: %w", err)
	}
	if exists {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		return nil, "", domain.ErrDuplicateAccount
	}

	if err := checkManager(ctx, s.repo, "", in.ManagerID); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		EmployeeID:       in.EmployeeID,
		Email:            in.Email,
		PasswordHash:     string(hash),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Role:             in.Role,
		Status:           domain.StatusActive,
		ManagerID:        in.ManagerID,
		Department:       in.Department,
		Position:         strings.TrimSpace(in.Position),
		DateOfJoining:    in.DateOfJoining.UTC(),
		DateOfBirth:      in.DateOfBirth,
		Phone:            in.Phone,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		Salary:           in.Salary,
		OnboardingStatus: domain.OnboardingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", fmt.Errorf("register: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", outcomeSuccess).Inc()
	metrics.RegistrationsTotal.WithLabelValues(path).Inc()
	s.audit.Record(auditEvent(ctx, domain.AuditRegister, actorID, created.ID, outcomeSuccess))
	s.log.Info().
		Str("account_id", created.ID).
		Str("employee_id", created.EmployeeID).
		Str("role", string(created.Role)).
		Str("path", path).
		Msg("account registered")

	return created, token, nil
}

// Login authenticates by email and password. Unknown email, wrong password and
// inactive account all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, s.loginFailed(ctx, "", "missing_fields")
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Burn the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return "", nil, s.loginFailed(ctx, "", "unknown_email")
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, s.loginFailed(ctx, account.ID, "wrong_password")
	}
	if !account.IsActive() {
		return "", nil, s.loginFailed(ctx, account.ID, "inactive_account")
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", outcomeSuccess).Inc()
	s.audit.Record(auditEvent(ctx, domain.AuditLogin, account.ID, account.ID, outcomeSuccess))
	return token, account, nil
}

func (s *AuthService) loginFailed(ctx context.Context, accountID, reason string) error {
	metrics.AuthAttemptsTotal.WithLabelValues("login", reason).Inc()
	s.audit.Record(auditEvent(ctx, domain.AuditLogin, "", accountID, reason))
	return domain.ErrInvalidCredentials
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), s.cost)
	})
	return s.dummyHash
}

// Me re-reads the caller's account.
func (s *AuthService) Me(ctx context.Context, caller *domain.Account) (*domain.Account, error) {
	if caller == nil {
		return nil, domain.ErrInvalidToken
	}
	return s.repo.FindByID(ctx, caller.ID)
}

// UpdateProfile applies the self-service fields to the caller's own account.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *domain.Account, in ports.ProfileInput) (*domain.Account, error) {
	if caller == nil {
		return nil, domain.ErrInvalidToken
	}

	upd := profileUpdate(in)
	if upd.Empty() {
		return s.repo.FindByID(ctx, caller.ID)
	}

	updated, err := s.repo.Update(ctx, caller.ID, upd)
	if err != nil {
		return nil, err
	}
	s.audit.Record(auditEvent(ctx, domain.AuditProfileUpdate, caller.ID, caller.ID, outcomeSuccess))
	return updated, nil
}

// ChangePassword requires proof of the current password. The new hash is
// written in a single update, so the old password stops working immediately.
func (s *AuthService) ChangePassword(ctx context.Context, caller *domain.Account, currentPassword, newPassword string) error {
	if caller == nil {
		return domain.ErrInvalidToken
	}
	if len(newPassword) < domain.MinPasswordLength {
		return domain.NewValidationError(domain.FieldError{
			Field:   "newPassword",
			Message: fmt.Sprintf("newPassword must be at least %d characters", domain.MinPasswordLength),
		})
	}

	account, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("change_password", "current_password_incorrect").Inc()
		s.audit.Record(auditEvent(ctx, domain.AuditPasswordChange, caller.ID, caller.ID, "current_password_incorrect"))
		return domain.ErrCurrentPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, caller.ID, string(hash)); err != nil {
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("change_password", outcomeSuccess).Inc()
	s.audit.Record(auditEvent(ctx, domain.AuditPasswordChange, caller.ID, caller.ID, outcomeSuccess))
	s.log.Info().Str("account_id", caller.ID).Msg("password changed")
	return nil
}

func profileUpdate(in ports.ProfileInput) ports.AccountUpdate {
	return ports.AccountUpdate{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Phone:            in.Phone,
		DateOfBirth:      in.DateOfBirth,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
	}
}

func validateRegistration(in ports.RegisterInput) error {
	var fields []domain.FieldError
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			fields = append(fields, domain.FieldError{Field: field, Message: field + " is required"})
		}
	}

	required("employeeId", in.EmployeeID)
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, domain.FieldError{Field: "email", Message: "email must be a valid email"})
	}
	if len(in.Password) < domain.MinPasswordLength {
		fields = append(fields, domain.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength),
		})
	}
	required("firstName", in.FirstName)
	required("lastName", in.LastName)
	required("position", in.Position)
	if in.DateOfJoining.IsZero() {
		fields = append(fields, domain.FieldError{Field: "dateOfJoining", Message: "dateOfJoining is required"})
	}
	if in.Role != "" && !in.Role.Valid() {
		fields = append(fields, domain.FieldError{Field: "role", Message: "role must be one of: admin hr manager employee"})
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
