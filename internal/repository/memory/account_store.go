package memory

import (
	"context"
	"time"

	"go-enrollment-server/internal/model"
)

type AccountStore struct {
	s *Store
}

func (a *AccountStore) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	for _, account := range a.s.accounts {
		if sameEmail(account.Email, email) {
			return account, nil
		}
	}
	return model.Account{}, model.ErrAccountNotFound
}

func (a *AccountStore) FindByID(ctx context.Context, id string) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	account, ok := a.s.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return account, nil
}

func (a *AccountStore) Create(ctx context.Context, account model.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for _, existing := range a.s.accounts {
		if sameEmail(existing.Email, account.Email) {
			return false, nil
		}
	}

	a.s.accounts[account.ID] = account
	return true, nil
}

func (a *AccountStore) List(ctx context.Context) ([]model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	accounts := make([]model.Account, 0, len(a.s.accounts))
	for _, account := range a.s.accounts {
		accounts = append(accounts, account)
	}
	sortByCreatedAt(accounts, func(acc model.Account) time.Time { return acc.CreatedAt })
	return accounts, nil
}

func (a *AccountStore) ChangeRole(ctx context.Context, id string, role model.Role, entry model.AuditEntry) (model.RoleChange, error) {
	if err := ctx.Err(); err != nil {
		return model.RoleChange{}, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	return a.changeRoleLocked(id, role, entry)
}

func (a *AccountStore) PromoteFirstAdmin(ctx context.Context, id string, entry model.AuditEntry) (model.RoleChange, error) {
	if err := ctx.Err(); err != nil {
		return model.RoleChange{}, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for _, account := range a.s.accounts {
		if account.Role == model.RoleAdmin {
			return model.RoleChange{}, model.ErrAdminExists
		}
	}

	return a.changeRoleLocked(id, model.RoleAdmin, entry)
}

func (a *AccountStore) changeRoleLocked(id string, role model.Role, entry model.AuditEntry) (model.RoleChange, error) {
	account, ok := a.s.accounts[id]
	if !ok {
		return model.RoleChange{}, model.ErrAccountNotFound
	}

	change := model.RoleChange{AccountID: id, PreviousRole: account.Role, NewRole: role}
	account.Role = role
	account.UpdatedAt = time.Now().UTC()
	a.s.accounts[id] = account

	entry.Before = map[string]any{"role": change.PreviousRole}
	entry.After = map[string]any{"role": change.NewRole}
	a.s.appendAuditLocked(entry)

	return change, nil
}
