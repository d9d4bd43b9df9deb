package memory

import (
	"context"
	"maps"
	"sort"

	"github.com/google/uuid"

	"go-enrollment-server/internal/model"
)

type PaymentStore struct {
	s *Store
}

func (p *PaymentStore) Insert(ctx context.Context, payment model.Payment) (model.Payment, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Payment{}, false, err
	}

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, existing := range p.s.payments {
		if existing.TransactionID == payment.TransactionID {
			return clonePayment(existing), false, nil
		}
	}

	payment.ID = uuid.NewString()
	p.s.payments[payment.ID] = clonePayment(payment)
	return clonePayment(payment), true, nil
}

func (p *PaymentStore) ListByEmail(ctx context.Context, email string, page model.Page) ([]model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.s.mu.RLock()
	payments := make([]model.Payment, 0)
	for _, payment := range p.s.payments {
		if sameEmail(payment.Email, email) {
			payments = append(payments, clonePayment(payment))
		}
	}
	p.s.mu.RUnlock()

	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date) {
			return payments[i].Date.After(payments[j].Date)
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return window(payments, page), nil
}

// clonePayment copies the metadata map so callers never share it with the store.
func clonePayment(payment model.Payment) model.Payment {
	payment.Metadata = maps.Clone(payment.Metadata)
	return payment
}

func window[T any](items []T, page model.Page) []T {
	if page.Offset >= len(items) {
		return items[:0]
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
