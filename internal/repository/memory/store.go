// Package memory holds process-local implementations of the stores. They are
// used by tests and by STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-enrollment-server/internal/model"
)

// Store keeps every collection behind one lock so that a role change and its
// audit entry are applied together.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]model.Account
	classes    map[string]model.Class
	selections map[string]model.Selection
	payments   map[string]model.Payment
	audit      []model.AuditEntry
	nextAudit  int64
}

func New() *Store {
	return &Store{
		accounts:   map[string]model.Account{},
		classes:    map[string]model.Class{},
		selections: map[string]model.Selection{},
		payments:   map[string]model.Payment{},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Accounts() *AccountStore     { return &AccountStore{s} }
func (s *Store) Payments() *PaymentStore     { return &PaymentStore{s} }
func (s *Store) Classes() *ClassStore        { return &ClassStore{s} }
func (s *Store) Selections() *SelectionStore { return &SelectionStore{s} }
func (s *Store) Audit() *AuditStore          { return &AuditStore{s} }

func (s *Store) appendAuditLocked(entry model.AuditEntry) {
	s.nextAudit++
	entry.ID = s.nextAudit
	if entry.OccurredAt == "" {
		entry.OccurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.audit = append(s.audit, entry)
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func sortByCreatedAt[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}
