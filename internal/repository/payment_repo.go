package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-enrollment-server/internal/model"
)

const paymentColumns = `id, email, price, amount, currency, transaction_id, date, created_at, metadata`

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Insert relies on the unique transaction_id index: when the row already
// exists the stored record is returned instead.
func (r *PaymentRepository) Insert(ctx context.Context, p model.Payment) (model.Payment, bool, error) {
	p.ID = uuid.NewString()
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	stored, err := scanPayment(r.pool.QueryRow(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (transaction_id) DO NOTHING
		 RETURNING `+paymentColumns,
		p.ID, p.Email, p.Price, p.Amount, p.Currency, p.TransactionID, p.Date, p.CreatedAt, metadata))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, false, fmt.Errorf("insert payment: %w", err)
	}

	existing, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`, p.TransactionID))
	if err != nil {
		return model.Payment{}, false, fmt.Errorf("load recorded payment: %w", err)
	}
	return existing, false, nil
}

func (r *PaymentRepository) ListByEmail(ctx context.Context, email string, page model.Page) ([]model.Payment, error) {
	sql := `SELECT ` + paymentColumns + ` FROM payments
	        WHERE lower(email) = lower($1)
	        ORDER BY date DESC, created_at DESC`
	args := []any{strings.TrimSpace(email)}

	if page.Limit > 0 {
		args = append(args, page.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]model.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.Email, &p.Price, &p.Amount, &p.Currency, &p.TransactionID, &p.Date, &p.CreatedAt, &p.Metadata)
	if err != nil {
		return model.Payment{}, err
	}
	p.Date = p.Date.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
