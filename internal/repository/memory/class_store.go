package memory

import (
	"context"
	"time"

	"go-enrollment-server/internal/model"
)

type ClassStore struct {
	s *Store
}

func (c *ClassStore) List(ctx context.Context) ([]model.Class, error) {
	return c.filter(ctx, func(model.Class) bool { return true })
}

func (c *ClassStore) ListByInstructor(ctx context.Context, email string) ([]model.Class, error) {
	return c.filter(ctx, func(class model.Class) bool { return sameEmail(class.InstructorEmail, email) })
}

func (c *ClassStore) FindByID(ctx context.Context, id string) (model.Class, error) {
	if err := ctx.Err(); err != nil {
		return model.Class{}, err
	}

	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	class, ok := c.s.classes[id]
	if !ok {
		return model.Class{}, model.ErrClassNotFound
	}
	return class, nil
}

func (c *ClassStore) Create(ctx context.Context, class model.Class) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.s.mu.Lock()
	c.s.classes[class.ID] = class
	c.s.mu.Unlock()
	return nil
}

func (c *ClassStore) filter(ctx context.Context, keep func(model.Class) bool) ([]model.Class, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.s.mu.RLock()
	classes := make([]model.Class, 0, len(c.s.classes))
	for _, class := range c.s.classes {
		if keep(class) {
			classes = append(classes, class)
		}
	}
	c.s.mu.RUnlock()

	sortByCreatedAt(classes, func(class model.Class) time.Time { return class.CreatedAt })
	return classes, nil
}
