package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-enrollment-server/internal/model"
)

type ClassService struct {
	classes   ClassStore
	ioTimeout time.Duration
	now       func() time.Time
}

func NewClassService(classes ClassStore, ioTimeout time.Duration) *ClassService {
	return &ClassService{classes: classes, ioTimeout: ioTimeout, now: time.Now}
}

func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	classes, err := s.classes.List(ioCtx)
	if err != nil {
		return nil, classifyIOError("list classes", err)
	}
	return nonNilClasses(classes), nil
}

func (s *ClassService) ListByInstructor(ctx context.Context, email string) ([]model.Class, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return []model.Class{}, nil
	}

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	classes, err := s.classes.ListByInstructor(ioCtx, email)
	if err != nil {
		return nil, classifyIOError("list instructor classes", err)
	}
	return nonNilClasses(classes), nil
}

// Create stores a class on behalf of actor. Classes created by instructors
// are always attributed to the instructor and start pending review.
func (s *ClassService) Create(ctx context.Context, class model.Class, actor model.AuditActor) (model.InsertResult, error) {
	class.ClassName = strings.TrimSpace(class.ClassName)
	if class.ClassName == "" {
		return model.InsertResult{}, fmt.Errorf("%w: className is required", model.ErrInvalidInput)
	}
	if class.Price <= 0 {
		return model.InsertResult{}, fmt.Errorf("%w: price must be positive", model.ErrInvalidAmount)
	}
	if class.AvailableSeats < 0 {
		return model.InsertResult{}, fmt.Errorf("%w: availableSeats must not be negative", model.ErrInvalidInput)
	}

	switch actor.Role {
	case model.RoleInstructor:
		class.InstructorEmail = model.NormalizeEmail(actor.Email)
		class.Status = model.ClassStatusPending
	case model.RoleAdmin:
		class.InstructorEmail = model.NormalizeEmail(class.InstructorEmail)
		if class.InstructorEmail == "" {
			class.InstructorEmail = model.NormalizeEmail(actor.Email)
		}
		if class.Status == "" {
			class.Status = model.ClassStatusPending
		}
	default:
		return model.InsertResult{}, model.ErrForbidden
	}

	class.ID = uuid.NewString()
	class.Enrolled = 0
	class.CreatedAt = s.now().UTC()

	ioCtx, cancel := ioContext(ctx, s.ioTimeout)
	defer cancel()

	if err := s.classes.Create(ioCtx, class); err != nil {
		return model.InsertResult{}, classifyIOError("create class", err)
	}

	slog.Info("class created", "class_id", class.ID, "instructor", class.InstructorEmail)

	return model.InsertResult{Acknowledged: true, InsertedID: class.ID}, nil
}

func nonNilClasses(classes []model.Class) []model.Class {
	if classes == nil {
		return []model.Class{}
	}
	return classes
}
