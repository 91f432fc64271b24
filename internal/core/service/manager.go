package service

import (
	"context"
	"errors"

	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
)

// maxManagerChain bounds the walk up the reporting chain.
const maxManagerChain = 64

// checkManager validates that managerID may become the manager of accountID.
// The reference must exist, must not be the account itself, and the account
// must not already appear above managerID. accountID is empty for accounts
// that do not exist yet, which cannot close a cycle.
func checkManager(ctx context.Context, repo ports.AccountRepository, accountID, managerID string) error {
	if managerID == "" {
		return nil
	}
	if managerID == accountID {
		return domain.ErrManagerCycle
	}

	current := managerID
	for depth := 0; depth < maxManagerChain; depth++ {
		acc, err := repo.FindByID(ctx, current)
		if err != nil {
			if !errors.Is(err, domain.ErrAccountNotFound) {
				return err
			}
			if depth == 0 {
				return domain.NewValidationError(domain.FieldError{
					Field:   "manager",
					Message: "manager must reference an existing account",
				})
			}
			// dangling reference higher up ends the chain
			return nil
		}
		if accountID == "" || acc.ManagerID == "" {
			return nil
		}
		if acc.ManagerID == accountID {
			return domain.ErrManagerCycle
		}
		current = acc.ManagerID
	}
	return domain.ErrManagerCycle
}
