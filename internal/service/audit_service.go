package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/pkg/apierror"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditService struct {
	store     AuditStore
	ioTimeout time.Duration
}

func NewAuditService(store AuditStore, ioTimeout time.Duration) *AuditService {
	return &AuditService{store: store, ioTimeout: ioTimeout}
}

// Log appends an audit entry. Failures are logged and otherwise ignored.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     before,
		After:      after,
		Error:      errText,
	}

	ioCtx, cancel := ioContext(context.WithoutCancel(ctx), s.ioTimeout)
	defer cancel()

	if err := s.store.Log(ioCtx, entry); err != nil {
		slog.Warn("audit log failed", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'from' datetime format", query.From, http.StatusBadRequest)
	}
	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'to' datetime format", query.To, http.StatusBadRequest)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "'to' must not be before 'from'", "", http.StatusBadRequest)
	}

	query.Action = strings.ToLower(strings.TrimSpace(query.Action))
	query.Status = strings.ToLower(strings.TrimSpace(query.Status))
	query.ActorEmail = model.NormalizeEmail(query.ActorEmail)
	query.Resource = strings.TrimSpace(query.Resource)

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	items, meta, err := s.store.Query(ioCtx, query)
	if err != nil {
		return nil, model.Meta{}, classifyIOError("query audit", err)
	}
	if items == nil {
		items = []model.AuditEntry{}
	}

	return items, meta, nil
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	return parseAuditTime(trimmed)
}

func parseAuditTime(raw string) (time.Time, error) {
	if value, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}
