package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/coursecache"
	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/repository"
	"github.com/noah-isme/kursus-go-api/internal/timeutil"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// CourseService exposes course domain use cases.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	ListOngoing(ctx context.Context) ([]dto.CourseResponse, error)
	ListExpired(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	GetByName(ctx context.Context, name string) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	ApplyOptions(ctx context.Context, id uint, payload dto.CourseOptionsRequest) (dto.CourseResponse, error)
	Destroy(ctx context.Context, id uint) error
	GdocsSheets(ctx context.Context, id uint) ([]string, error)
}

type courseService struct {
	repo      repository.CourseRepository
	exercises repository.ExerciseRepository
	store     *coursecache.Store
	validator *validator.Validate
	location  *time.Location
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService builds a new course service. The location is the
// canonical zone used when normalizing visibility cutoffs.
func NewCourseService(repo repository.CourseRepository, exercises repository.ExerciseRepository, store *coursecache.Store, validate *validator.Validate, location *time.Location, logger zerolog.Logger) CourseService {
	if location == nil {
		location = time.UTC
	}

	return &courseService{
		repo:      repo,
		exercises: exercises,
		store:     store,
		validator: validate,
		location:  location,
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) ListOngoing(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.ListOngoing(ctx, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) ListExpired(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.ListExpired(ctx, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) GetByName(ctx context.Context, name string) (dto.CourseResponse, error) {
	course, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	// The default backend is applied before validation runs, so an absent
	// backend is valid while an unknown one is not.
	backend := payload.SourceBackend
	if backend == "" {
		backend = models.DefaultSourceBackend
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, asValidationError(err)
	}

	if err := s.validateCourse(ctx, payload.Name, backend, 0); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Name:           payload.Name,
		SourceURL:      payload.SourceURL,
		SourceBackend:  backend,
		Hidden:         payload.Hidden,
		SpreadsheetKey: payload.SpreadsheetKey,
	}

	if err := s.applyCutoffs(&course, payload.HideAfter, payload.HiddenIfRegisteredAfter); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("course", course.Name).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.SourceURL != nil {
		course.SourceURL = *payload.SourceURL
	}
	if payload.SourceBackend != nil {
		course.SourceBackend = *payload.SourceBackend
	}
	if payload.SpreadsheetKey != nil {
		course.SpreadsheetKey = *payload.SpreadsheetKey
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, asValidationError(err)
	}

	if err := s.validateCourse(ctx, course.Name, course.SourceBackend, course.ID); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")

	return dto.NewCourseResponse(course), nil
}

// ApplyOptions updates the visibility options as one group: date cutoffs left
// blank are cleared, not kept.
func (s *courseService) ApplyOptions(ctx context.Context, id uint, payload dto.CourseOptionsRequest) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	course.Hidden = payload.Hidden
	course.SpreadsheetKey = payload.SpreadsheetKey

	if err := s.applyCutoffs(&course, payload.HideAfter, payload.HiddenIfRegisteredAfter); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

// Destroy deletes the course row and all dependents in one transaction, then
// removes the on-disk cache. A cache failure after the commit is reported as
// a cache condition but the database deletion stands.
func (s *courseService) Destroy(ctx context.Context, id uint) error {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", id).Str("course", course.Name).Msg("course deleted")

	if err := s.store.DeleteCourseCache(course.Name, course.CacheVersion); err != nil {
		s.logger.Error().Err(err).Str("course", course.Name).Msg("course deleted but cache removal failed")
		return err
	}

	return nil
}

func (s *courseService) GdocsSheets(ctx context.Context, id uint) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return s.exercises.DistinctGdocsSheets(ctx, id)
}

// applyCutoffs normalizes the two visibility cutoffs. A hide-after given as a
// bare date means the end of that day; a registered-after cutoff means its
// start.
func (s *courseService) applyCutoffs(course *models.Course, hideAfter, hiddenIfRegisteredAfter string) error {
	verr := &ValidationError{}

	normalized, err := timeutil.Normalize(hideAfter, s.location, true)
	if err != nil {
		verr.add("hide_after", err.Error())
	} else {
		course.HideAfter = normalized
	}

	normalized, err = timeutil.Normalize(hiddenIfRegisteredAfter, s.location, false)
	if err != nil {
		verr.add("hidden_if_registered_after", err.Error())
	} else {
		course.HiddenIfRegisteredAfter = normalized
	}

	return verr.orNil()
}

// validateCourse covers the checks struct tags cannot express: path safety
// of the cache name, the backend allow-list and name uniqueness.
func (s *courseService) validateCourse(ctx context.Context, name, backend string, selfID uint) error {
	verr := &ValidationError{}

	if strings.ContainsAny(name, " \t\n") {
		verr.add("name", "should not contain white spaces")
	} else if name != "" {
		if err := coursecache.ValidateCacheName(name); err != nil {
			verr.add("name", err.Error())
		}
	}

	if !validBackend(backend) {
		verr.add("source_backend", fmt.Sprintf("must be one of [%s]", strings.Join(models.ValidSourceBackends(), ", ")))
	}

	if name != "" {
		existing, err := s.repo.GetByName(ctx, name)
		switch {
		case err == nil && existing.ID != selfID:
			verr.add("name", "has already been taken")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}

	return verr.orNil()
}

func validBackend(backend string) bool {
	for _, valid := range models.ValidSourceBackends() {
		if backend == valid {
			return true
		}
	}
	return false
}
