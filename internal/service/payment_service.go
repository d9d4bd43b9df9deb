package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/processor"
)

type PaymentConfig struct {
	Currency           string
	PaymentMethodTypes []string
	IOTimeout          time.Duration
}

type PaymentService struct {
	processor processor.Processor
	payments  PaymentStore
	cfg       PaymentConfig
	now       func() time.Time
}

func NewPaymentService(proc processor.Processor, payments PaymentStore, cfg PaymentConfig) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	if len(cfg.PaymentMethodTypes) == 0 {
		cfg.PaymentMethodTypes = []string{"card"}
	}

	return &PaymentService{processor: proc, payments: payments, cfg: cfg, now: time.Now}
}

// CreateIntent opens a processor payment intent for price and returns its
// client secret. Nothing is persisted.
func (s *PaymentService) CreateIntent(ctx context.Context, rawPrice []byte) (model.ClientSecretResponse, error) {
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return model.ClientSecretResponse{}, err
	}

	amount, err := ToMinorUnits(price)
	if err != nil {
		return model.ClientSecretResponse{}, err
	}

	ioCtx, cancel := ioContext(ctx, s.cfg.IOTimeout)
	defer cancel()

	intent, err := s.processor.CreateIntent(ioCtx, processor.IntentRequest{
		Amount:             amount,
		Currency:           s.cfg.Currency,
		PaymentMethodTypes: s.cfg.PaymentMethodTypes,
	})
	if err != nil {
		return model.ClientSecretResponse{}, classifyIOError("create payment intent", err)
	}

	slog.Info("payment intent created", "intent_id", intent.ID, "amount", amount, "currency", s.cfg.Currency)

	return model.ClientSecretResponse{ClientSecret: intent.ClientSecret}, nil
}

// RecordPayment persists a payment after confirming with the processor that
// the referenced intent succeeded for the same amount and currency. A
// transaction id that was already recorded yields the stored record.
func (s *PaymentService) RecordPayment(ctx context.Context, payment model.Payment) (model.PersistedPayment, error) {
	payment.Email = model.NormalizeEmail(payment.Email)
	payment.TransactionID = strings.TrimSpace(payment.TransactionID)

	if payment.Email == "" {
		return model.PersistedPayment{}, fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}
	if payment.TransactionID == "" {
		return model.PersistedPayment{}, fmt.Errorf("%w: transactionId is required", model.ErrInvalidInput)
	}

	amount, err := ToMinorUnits(decimal.NewFromFloat(payment.Price))
	if err != nil {
		return model.PersistedPayment{}, err
	}

	if err := s.verify(ctx, payment.TransactionID, amount); err != nil {
		return model.PersistedPayment{}, err
	}

	now := s.now().UTC()
	payment.Amount = amount
	payment.Currency = s.cfg.Currency
	payment.CreatedAt = now
	if payment.Date.IsZero() {
		payment.Date = now
	}

	ioCtx, cancel := ioContext(ctx, s.cfg.IOTimeout)
	defer cancel()

	stored, inserted, err := s.payments.Insert(ioCtx, payment)
	if err != nil {
		return model.PersistedPayment{}, classifyIOError("insert payment", err)
	}

	if inserted {
		slog.Info("payment recorded", "payment_id", stored.ID, "email", stored.Email, "transaction_id", stored.TransactionID, "amount", stored.Amount)
	} else {
		slog.Info("payment replayed", "payment_id", stored.ID, "transaction_id", stored.TransactionID)
	}

	return model.PersistedPayment{Payment: stored, Replayed: !inserted}, nil
}

func (s *PaymentService) verify(ctx context.Context, transactionID string, amount int64) error {
	ioCtx, cancel := ioContext(ctx, s.cfg.IOTimeout)
	defer cancel()

	intent, err := s.processor.RetrieveIntent(ioCtx, transactionID)
	if errors.Is(err, processor.ErrIntentNotFound) {
		return fmt.Errorf("%w: unknown transaction %s", model.ErrPaymentNotVerified, transactionID)
	}
	if err != nil {
		return classifyIOError("retrieve payment intent", err)
	}

	switch {
	case intent.Status != processor.StatusSucceeded:
		return fmt.Errorf("%w: transaction status is %q", model.ErrPaymentNotVerified, intent.Status)
	case intent.Amount != amount:
		return fmt.Errorf("%w: charged %d, recorded %d", model.ErrPaymentNotVerified, intent.Amount, amount)
	case !strings.EqualFold(intent.Currency, s.cfg.Currency):
		return fmt.Errorf("%w: currency %q", model.ErrPaymentNotVerified, intent.Currency)
	}

	return nil
}
