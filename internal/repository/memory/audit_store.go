package memory

import (
	"context"
	"strings"
	"time"

	"go-enrollment-server/internal/model"
)

type AuditStore struct {
	s *Store
}

func (a *AuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.s.mu.Lock()
	a.s.appendAuditLocked(entry)
	a.s.mu.Unlock()
	return nil
}

func (a *AuditStore) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Meta{}, err
	}

	from, _ := time.Parse(time.RFC3339Nano, strings.TrimSpace(query.From))
	to, _ := time.Parse(time.RFC3339Nano, strings.TrimSpace(query.To))

	a.s.mu.RLock()
	items := make([]model.AuditEntry, 0, len(a.s.audit))
	for i := len(a.s.audit) - 1; i >= 0; i-- {
		entry := a.s.audit[i]

		if query.Action != "" && !strings.EqualFold(entry.Action, query.Action) {
			continue
		}
		if query.Status != "" && !strings.EqualFold(entry.Status, query.Status) {
			continue
		}
		if query.ActorEmail != "" && !sameEmail(entry.Actor.Email, query.ActorEmail) {
			continue
		}
		if query.Resource != "" && !strings.Contains(strings.ToLower(entry.Resource), strings.ToLower(query.Resource)) {
			continue
		}

		at, err := time.Parse(time.RFC3339Nano, entry.OccurredAt)
		if err == nil {
			if !from.IsZero() && at.Before(from) {
				continue
			}
			if !to.IsZero() && at.After(to) {
				continue
			}
		}

		items = append(items, entry)
	}
	a.s.mu.RUnlock()

	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	return window(items, model.Page{Limit: limit, Offset: (page - 1) * limit}), meta, nil
}
