package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hrdashboard/hr-api/internal/api/metrics"
	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// AccessService decides, per request, whether the caller is authenticated,
// whether their role permits a route class, and whether they may touch a
// specific employee record. Nothing is cached between calls.
type AccessService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewAccessService(repo ports.AccountRepository, tokens ports.TokenService, audit ports.AuditRecorder, log zerolog.Logger) *AccessService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AccessService{repo: repo, tokens: tokens, audit: audit, log: log}
}

// Authenticate verifies token and resolves its subject to an active account.
// Unknown and inactive accounts are indistinguishable from a bad signature.
func (s *AccessService) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("token", "missing").Inc()
		return nil, domain.ErrMissingToken
	}

	accountID, err := s.tokens.Verify(token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("token", "invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("token", "unknown_account").Inc()
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !account.IsActive() {
		metrics.AuthAttemptsTotal.WithLabelValues("token", "inactive_account").Inc()
		return nil, domain.ErrInvalidToken
	}

	metrics.AuthAttemptsTotal.WithLabelValues("token", "success").Inc()
	return account, nil
}

// AuthorizeRoute is the role gate for a route class.
func (s *AccessService) AuthorizeRoute(ctx context.Context, caller *domain.Account, class domain.RouteClass) error {
	decision := domain.DecideRoute(caller, class)
	s.observe(ctx, "route", class, decision, caller, "")
	return decision.Err()
}

// AuthorizeEmployee applies the ownership rule for targetID. admin and hr get
// ErrAccountNotFound for a missing record; every other role gets ErrForbidden
// so the existence of records outside their reach is not revealed.
func (s *AccessService) AuthorizeEmployee(ctx context.Context, caller *domain.Account, class domain.RouteClass, targetID string) (*domain.Account, error) {
	if caller == nil {
		return nil, domain.ErrInvalidToken
	}

	// An employee is only ever allowed onto their own record, so other ids are
	// refused before touching the store.
	if caller.Role == domain.RoleEmployee && caller.ID != targetID {
		s.observe(ctx, "ownership", class, domain.DenyForbidden, caller, targetID)
		return nil, domain.ErrForbidden
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	decision := domain.DecideEmployeeAccess(caller, targetID, target)
	s.observe(ctx, "ownership", class, decision, caller, targetID)
	if decision != domain.Allow {
		return nil, decision.Err()
	}
	if target == nil {
		return nil, domain.ErrAccountNotFound
	}
	return target, nil
}

func (s *AccessService) observe(ctx context.Context, gate string, class domain.RouteClass, d domain.Decision, caller *domain.Account, targetID string) {
	metrics.AccessDecisionsTotal.WithLabelValues(gate, string(class), d.String()).Inc()
	if d == domain.Allow {
		return
	}

	var actorID string
	if caller != nil {
		actorID = caller.ID
	}
	s.log.Debug().
		Str("gate", gate).
		Str("class", string(class)).
		Str("decision", d.String()).
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Msg("access denied")
	s.audit.Record(auditEvent(ctx, domain.AuditAccessDenied, actorID, targetID, gate+":"+string(class)))
}
