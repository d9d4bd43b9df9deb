package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-enrollment-server/internal/model"
)

const accountColumns = `id, email, name, photo_url, role, created_at, updated_at`

type AccountRepository struct {
	pool  *pgxpool.Pool
	audit *AuditRepository
}

func NewAccountRepository(pool *pgxpool.Pool, audit *AuditRepository) *AccountRepository {
	return &AccountRepository{pool: pool, audit: audit}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Account{}, model.ErrAccountNotFound
	}

	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) Create(ctx context.Context, a model.Account) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, name, photo_url, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT ((lower(email))) DO NOTHING`,
		a.ID, a.Email, a.Name, a.PhotoURL, string(a.Role), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("create account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// firstAdminLockKey serializes first-admin promotions across connections.
const firstAdminLockKey int64 = 0x656e726f6c6c

// ChangeRole locks the account row, overwrites its role and appends the audit
// entry inside one transaction.
func (r *AccountRepository) ChangeRole(ctx context.Context, id string, role model.Role, entry model.AuditEntry) (model.RoleChange, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.RoleChange{}, model.ErrAccountNotFound
	}

	var change model.RoleChange
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		change, err = r.changeRoleTx(ctx, tx, id, role, entry)
		return err
	})
	if err != nil {
		return model.RoleChange{}, err
	}
	return change, nil
}

// PromoteFirstAdmin takes a transaction-scoped advisory lock before counting
// admins, so concurrent bootstraps cannot both see zero.
func (r *AccountRepository) PromoteFirstAdmin(ctx context.Context, id string, entry model.AuditEntry) (model.RoleChange, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.RoleChange{}, model.ErrAccountNotFound
	}

	var change model.RoleChange
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, firstAdminLockKey); err != nil {
			return fmt.Errorf("lock first admin: %w", err)
		}

		var admins int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = $1`, string(model.RoleAdmin)).Scan(&admins); err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			return model.ErrAdminExists
		}

		var err error
		change, err = r.changeRoleTx(ctx, tx, id, model.RoleAdmin, entry)
		return err
	})
	if err != nil {
		return model.RoleChange{}, err
	}
	return change, nil
}

func (r *AccountRepository) changeRoleTx(ctx context.Context, tx pgx.Tx, id string, role model.Role, entry model.AuditEntry) (model.RoleChange, error) {
	change := model.RoleChange{AccountID: id, NewRole: role}

	var previous string
	err := tx.QueryRow(ctx, `SELECT role FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RoleChange{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.RoleChange{}, fmt.Errorf("lock account: %w", err)
	}
	change.PreviousRole = model.ParseRole(previous)

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1`,
		id, string(role), time.Now().UTC()); err != nil {
		return model.RoleChange{}, fmt.Errorf("update role: %w", err)
	}

	entry.Before = map[string]any{"role": change.PreviousRole}
	entry.After = map[string]any{"role": change.NewRole}
	if err := r.audit.insert(ctx, tx, entry); err != nil {
		return model.RoleChange{}, err
	}
	return change, nil
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PhotoURL, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, err
	}
	a.Role = model.ParseRole(role)
	return a, nil
}
