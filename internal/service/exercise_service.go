package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/repository"
)

// DeadlinePolicy resolves the deadline that applies to a user for an
// exercise. Implementations must not fail; a policy that cannot decide
// returns the exercise's stored deadline.
type DeadlinePolicy interface {
	EffectiveDeadline(exercise models.Exercise, user models.User) *time.Time
}

// StoredDeadlinePolicy applies each exercise's stored deadline to every user.
type StoredDeadlinePolicy struct{}

// EffectiveDeadline returns the exercise's own deadline.
func (StoredDeadlinePolicy) EffectiveDeadline(exercise models.Exercise, _ models.User) *time.Time {
	return exercise.Deadline
}

// ExerciseService exposes per-user exercise listings.
type ExerciseService interface {
	ListVisible(ctx context.Context, courseID uint, user models.User) ([]dto.ExerciseResponse, error)
}

type exerciseService struct {
	courses   repository.CourseRepository
	exercises repository.ExerciseRepository
	deadlines DeadlinePolicy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExerciseService builds a new exercise service.
func NewExerciseService(courses repository.CourseRepository, exercises repository.ExerciseRepository, deadlines DeadlinePolicy, logger zerolog.Logger) ExerciseService {
	if deadlines == nil {
		deadlines = StoredDeadlinePolicy{}
	}

	return &exerciseService{
		courses:   courses,
		exercises: exercises,
		deadlines: deadlines,
		logger:    logger.With().Str("component", "exercise_service").Logger(),
		now:       time.Now,
	}
}

// ListVisible returns the exercises of a course the user may see, each with
// its effective per-user deadline resolved.
func (s *exerciseService) ListVisible(ctx context.Context, courseID uint, user models.User) ([]dto.ExerciseResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	now := s.now()
	if !course.VisibleTo(user, now) {
		return nil, ErrCourseNotFound
	}

	exercises, err := s.exercises.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ExerciseResponse, 0, len(exercises))
	for _, exercise := range exercises {
		if !exercise.VisibleTo(course, user, now) {
			continue
		}
		responses = append(responses, dto.NewExerciseResponse(exercise, s.deadlines.EffectiveDeadline(exercise, user)))
	}

	return responses, nil
}
