package service

import (
	"context"

	"go-enrollment-server/internal/model"
)

type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	FindByID(ctx context.Context, id string) (model.Account, error)
	// Create inserts the account unless its email is already registered, in
	// which case it reports false and stores nothing.
	Create(ctx context.Context, account model.Account) (bool, error)
	List(ctx context.Context) ([]model.Account, error)
	// ChangeRole overwrites the role and appends the audit entry in one unit
	// of work. The entry's Before/After are filled by the store.
	ChangeRole(ctx context.Context, id string, role model.Role, entry model.AuditEntry) (model.RoleChange, error)
	// PromoteFirstAdmin makes the account an admin only while no admin
	// exists, checked in the same unit of work; otherwise ErrAdminExists.
	PromoteFirstAdmin(ctx context.Context, id string, entry model.AuditEntry) (model.RoleChange, error)
}

type PaymentStore interface {
	// Insert stores the payment unless its transaction id is already
	// recorded; then it returns the stored record and false.
	Insert(ctx context.Context, payment model.Payment) (model.Payment, bool, error)
	ListByEmail(ctx context.Context, email string, page model.Page) ([]model.Payment, error)
}

type ClassStore interface {
	List(ctx context.Context) ([]model.Class, error)
	ListByInstructor(ctx context.Context, email string) ([]model.Class, error)
	FindByID(ctx context.Context, id string) (model.Class, error)
	Create(ctx context.Context, class model.Class) error
}

type SelectionStore interface {
	ListByEmail(ctx context.Context, email string) ([]model.Selection, error)
	Create(ctx context.Context, selection model.Selection) error
	Delete(ctx context.Context, id string, email string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}
