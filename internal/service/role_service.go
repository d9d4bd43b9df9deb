package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-enrollment-server/internal/model"
)

type RoleService struct {
	accounts      AccountStore
	audit         *AuditService
	bootstrapHash []byte
	ioTimeout     time.Duration
}

// NewRoleService builds the role administration service. bootstrapHash is the
// bcrypt hash of the secret that may promote the first admin; empty disables
// bootstrapping.
func NewRoleService(accounts AccountStore, audit *AuditService, bootstrapHash string, ioTimeout time.Duration) *RoleService {
	svc := &RoleService{accounts: accounts, audit: audit, ioTimeout: ioTimeout}
	if bootstrapHash != "" {
		svc.bootstrapHash = []byte(bootstrapHash)
	}
	return svc
}

// QueryRole reports whether the account registered under email holds the
// wanted role. Unknown emails hold no role.
func (s *RoleService) QueryRole(ctx context.Context, email string, wanted model.Role) (bool, error) {
	role, err := s.RoleOf(ctx, email)
	if err != nil {
		return false, err
	}
	return role == wanted, nil
}

func (s *RoleService) RoleOf(ctx context.Context, email string) (model.Role, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return model.RoleNone, nil
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	account, err := s.accounts.FindByEmail(ioCtx, email)
	if errors.Is(err, model.ErrAccountNotFound) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, classifyIOError("find account", err)
	}

	return account.Role, nil
}

// Promote sets the account's role. Repeating a promotion is not an error; it
// reports a modified count of zero. Admins may grant either role; a caller
// holding the bootstrap secret may only make the first admin.
func (s *RoleService) Promote(ctx context.Context, accountID string, role model.Role, actor model.AuditActor, bootstrapToken string) (model.UpdateResult, error) {
	if role != model.RoleAdmin && role != model.RoleInstructor {
		return model.UpdateResult{}, model.ErrInvalidInput
	}

	resource := "account:" + accountID

	actorRole, err := s.RoleOf(ctx, actor.Email)
	if err != nil {
		return model.UpdateResult{}, err
	}
	actor.Email = model.NormalizeEmail(actor.Email)
	actor.Role = actorRole

	bootstrap := actorRole != model.RoleAdmin
	if bootstrap && !s.bootstrapAllowed(role, bootstrapToken) {
		return model.UpdateResult{}, s.deny(ctx, actor, accountID, role)
	}

	if _, err := uuid.Parse(accountID); err != nil {
		return model.UpdateResult{}, model.ErrAccountNotFound
	}

	entry := model.AuditEntry{
		Action:   model.AuditActionPromote,
		Actor:    actor,
		Status:   model.AuditStatusSuccess,
		Resource: resource,
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	var change model.RoleChange
	if bootstrap {
		change, err = s.accounts.PromoteFirstAdmin(ioCtx, accountID, entry)
	} else {
		change, err = s.accounts.ChangeRole(ioCtx, accountID, role, entry)
	}
	if errors.Is(err, model.ErrAdminExists) {
		return model.UpdateResult{}, s.deny(ctx, actor, accountID, role)
	}
	if err != nil {
		return model.UpdateResult{}, classifyIOError("change role", err)
	}

	result := model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if change.Modified() {
		result.ModifiedCount = 1
	}

	slog.Info("role changed",
		"account_id", accountID,
		"previous_role", change.PreviousRole,
		"new_role", change.NewRole,
		"actor", actor.Email,
		"bootstrap", bootstrap,
	)

	return result, nil
}

func (s *RoleService) bootstrapAllowed(role model.Role, bootstrapToken string) bool {
	if role != model.RoleAdmin || len(s.bootstrapHash) == 0 || bootstrapToken == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.bootstrapHash, []byte(bootstrapToken)) == nil
}

func (s *RoleService) deny(ctx context.Context, actor model.AuditActor, accountID string, role model.Role) error {
	s.audit.Log(ctx, model.AuditActionPromote, actor, model.AuditStatusDenied, "account:"+accountID, nil, map[string]any{"role": role}, model.ErrForbidden.Error())
	slog.Warn("role change denied", "actor", actor.Email, "account_id", accountID, "role", role)
	return model.ErrForbidden
}
