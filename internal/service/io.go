package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/pkg/apierror"
)

const defaultIOTimeout = 10 * time.Second

// domainErrors are returned by collaborators as-is; everything else they
// return is an upstream failure.
var domainErrors = []error{
	model.ErrAccountNotFound,
	model.ErrClassNotFound,
	model.ErrSelectionNotFound,
	model.ErrInvalidInput,
	model.ErrInvalidAmount,
	model.ErrPaymentNotVerified,
	model.ErrForbidden,
	model.ErrTimeout,
	model.ErrUpstream,
}

func ioContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultIOTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func classifyIOError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, model.ErrTimeout)
	}

	for _, domainErr := range domainErrors {
		if errors.Is(err, domainErr) {
			return err
		}
	}

	return fmt.Errorf("%s: %w: %w", op, model.ErrUpstream, err)
}
