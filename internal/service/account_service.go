package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-enrollment-server/internal/model"
)

type AccountService struct {
	accounts  AccountStore
	ioTimeout time.Duration
	now       func() time.Time
}

func NewAccountService(accounts AccountStore, ioTimeout time.Duration) *AccountService {
	return &AccountService{accounts: accounts, ioTimeout: ioTimeout, now: time.Now}
}

// Register stores a new student account. It reports created=false without
// error when the email is already registered.
func (s *AccountService) Register(ctx context.Context, account model.Account) (model.InsertResult, bool, error) {
	account.Email = model.NormalizeEmail(account.Email)
	if account.Email == "" {
		return model.InsertResult{}, false, fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}

	now := s.now().UTC()
	account.ID = uuid.NewString()
	account.Role = model.RoleStudent
	account.CreatedAt = now
	account.UpdatedAt = now

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	created, err := s.accounts.Create(ioCtx, account)
	if err != nil {
		return model.InsertResult{}, false, classifyIOError("create account", err)
	}
	if !created {
		return model.InsertResult{}, false, nil
	}

	slog.Info("account registered", "account_id", account.ID, "email", account.Email)

	return model.InsertResult{Acknowledged: true, InsertedID: account.ID}, true, nil
}

func (s *AccountService) List(ctx context.Context) ([]model.Account, error) {
	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	accounts, err := s.accounts.List(ioCtx)
	if err != nil {
		return nil, classifyIOError("list accounts", err)
	}
	if accounts == nil {
		accounts = []model.Account{}
	}

	return accounts, nil
}
