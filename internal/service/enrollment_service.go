package service

import (
	"context"
	"time"

	"go-enrollment-server/internal/model"
)

type EnrollmentService struct {
	payments  PaymentStore
	ioTimeout time.Duration
}

func NewEnrollmentService(payments PaymentStore, ioTimeout time.Duration) *EnrollmentService {
	return &EnrollmentService{payments: payments, ioTimeout: ioTimeout}
}

// ListEnrollments returns the payments recorded for email, newest first.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, email string, page model.Page) ([]model.Payment, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return []model.Payment{}, nil
	}
	if page.Limit < 0 || page.Offset < 0 {
		return nil, model.ErrInvalidInput
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	payments, err := s.payments.ListByEmail(ioCtx, email, page)
	if err != nil {
		return nil, classifyIOError("list enrollments", err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}

	return payments, nil
}
