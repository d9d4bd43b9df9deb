package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-enrollment-server/internal/model"
)

type SelectionRepository struct {
	pool *pgxpool.Pool
}

func NewSelectionRepository(pool *pgxpool.Pool) *SelectionRepository {
	return &SelectionRepository{pool: pool}
}

func (r *SelectionRepository) ListByEmail(ctx context.Context, email string) ([]model.Selection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_id, class_name, class_image, instructor_name, instructor_email, price, email, created_at
		 FROM selections WHERE lower(email) = lower($1) ORDER BY created_at`,
		strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	selections := make([]model.Selection, 0)
	for rows.Next() {
		var s model.Selection
		if err := rows.Scan(&s.ID, &s.ClassID, &s.ClassName, &s.ClassImage, &s.InstructorName,
			&s.InstructorEmail, &s.Price, &s.Email, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}

func (r *SelectionRepository) Create(ctx context.Context, s model.Selection) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO selections
		 (id, class_id, class_name, class_image, instructor_name, instructor_email, price, email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.ClassID, s.ClassName, s.ClassImage, s.InstructorName, s.InstructorEmail, s.Price, s.Email, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create selection: %w", err)
	}
	return nil
}

func (r *SelectionRepository) Delete(ctx context.Context, id string, email string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM selections WHERE id = $1 AND lower(email) = lower($2)`, id, strings.TrimSpace(email))
	if err != nil {
		return 0, fmt.Errorf("delete selection: %w", err)
	}
	return tag.RowsAffected(), nil
}
