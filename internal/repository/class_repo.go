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

const classColumns = `id, class_name, class_image, instructor_name, instructor_email,
	available_seats, price, status, enrolled, created_at`

type ClassRepository struct {
	pool *pgxpool.Pool
}

func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func (r *ClassRepository) List(ctx context.Context) ([]model.Class, error) {
	return r.query(ctx, `SELECT `+classColumns+` FROM classes ORDER BY created_at`)
}

func (r *ClassRepository) ListByInstructor(ctx context.Context, email string) ([]model.Class, error) {
	return r.query(ctx,
		`SELECT `+classColumns+` FROM classes WHERE lower(instructor_email) = lower($1) ORDER BY created_at`,
		strings.TrimSpace(email))
}

func (r *ClassRepository) FindByID(ctx context.Context, id string) (model.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Class{}, model.ErrClassNotFound
	}

	class, err := scanClass(r.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Class{}, model.ErrClassNotFound
	}
	if err != nil {
		return model.Class{}, fmt.Errorf("find class: %w", err)
	}
	return class, nil
}

func (r *ClassRepository) Create(ctx context.Context, c model.Class) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO classes (`+classColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.ClassName, c.ClassImage, c.InstructorName, c.InstructorEmail,
		c.AvailableSeats, c.Price, string(c.Status), c.Enrolled, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

func (r *ClassRepository) query(ctx context.Context, sql string, args ...any) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := make([]model.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

func scanClass(row pgx.Row) (model.Class, error) {
	var c model.Class
	var status string
	err := row.Scan(&c.ID, &c.ClassName, &c.ClassImage, &c.InstructorName, &c.InstructorEmail,
		&c.AvailableSeats, &c.Price, &status, &c.Enrolled, &c.CreatedAt)
	if err != nil {
		return model.Class{}, err
	}
	c.Status = model.ClassStatus(status)
	return c, nil
}
