package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-enrollment-server/internal/model"
)

type SelectionService struct {
	selections SelectionStore
	classes    ClassStore
	ioTimeout  time.Duration
	now        func() time.Time
}

func NewSelectionService(selections SelectionStore, classes ClassStore, ioTimeout time.Duration) *SelectionService {
	return &SelectionService{selections: selections, classes: classes, ioTimeout: ioTimeout, now: time.Now}
}

// List returns the cart of owner. Callers may only read their own cart.
func (s *SelectionService) List(ctx context.Context, owner string, requested string) ([]model.Selection, error) {
	owner = model.NormalizeEmail(owner)
	requested = model.NormalizeEmail(requested)
	if requested != "" && requested != owner {
		return nil, model.ErrForbidden
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	selections, err := s.selections.ListByEmail(ioCtx, owner)
	if err != nil {
		return nil, classifyIOError("list selections", err)
	}
	if selections == nil {
		selections = []model.Selection{}
	}

	return selections, nil
}

// Add places a class in owner's cart. Class details missing from the request
// are filled from the catalogue when the class is known.
func (s *SelectionService) Add(ctx context.Context, selection model.Selection, owner string) (model.InsertResult, error) {
	selection.ClassID = strings.TrimSpace(selection.ClassID)
	if selection.ClassID == "" {
		return model.InsertResult{}, fmt.Errorf("%w: classId is required", model.ErrInvalidInput)
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	class, err := s.classes.FindByID(ioCtx, selection.ClassID)
	switch {
	case err == nil:
		if selection.ClassName == "" {
			selection.ClassName = class.ClassName
		}
		if selection.ClassImage == "" {
			selection.ClassImage = class.ClassImage
		}
		if selection.InstructorName == "" {
			selection.InstructorName = class.InstructorName
		}
		if selection.InstructorEmail == "" {
			selection.InstructorEmail = class.InstructorEmail
		}
		if selection.Price <= 0 {
			selection.Price = class.Price
		}
	case errors.Is(err, model.ErrClassNotFound):
	default:
		return model.InsertResult{}, classifyIOError("find class", err)
	}

	if selection.Price < 0 {
		return model.InsertResult{}, fmt.Errorf("%w: price must not be negative", model.ErrInvalidAmount)
	}

	selection.ID = uuid.NewString()
	selection.Email = model.NormalizeEmail(owner)
	selection.CreatedAt = s.now().UTC()

	if err := s.selections.Create(ioCtx, selection); err != nil {
		return model.InsertResult{}, classifyIOError("create selection", err)
	}

	return model.InsertResult{Acknowledged: true, InsertedID: selection.ID}, nil
}

// Remove deletes a selection from owner's cart. Unknown ids and selections
// owned by someone else delete nothing.
func (s *SelectionService) Remove(ctx context.Context, id string, owner string) (model.DeleteResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.DeleteResult{Acknowledged: true}, nil
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	deleted, err := s.selections.Delete(ioCtx, id, model.NormalizeEmail(owner))
	if err != nil {
		return model.DeleteResult{}, classifyIOError("delete selection", err)
	}

	return model.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}
