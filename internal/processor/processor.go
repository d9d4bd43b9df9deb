package processor

import (
	"context"
	"errors"
)

// StatusSucceeded is the processor status of a captured payment intent.
const StatusSucceeded = "succeeded"

var ErrIntentNotFound = errors.New("payment intent not found")

type IntentRequest struct {
	Amount             int64
	Currency           string
	PaymentMethodTypes []string
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

// Processor is the external payment provider. Implementations must honour
// ctx cancellation.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
}
