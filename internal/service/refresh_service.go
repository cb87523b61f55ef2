package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/coursecache"
	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/observability"
	"github.com/noah-isme/kursus-go-api/internal/repository"
	"github.com/noah-isme/kursus-go-api/pkg/vcs"
)

// ErrRefreshCanceled reports that a refresh was canceled before completion.
// The published cache is left untouched.
var ErrRefreshCanceled = errors.New("course refresh canceled")

// RefreshRequest is the contract with the external refresher collaborator:
// it receives the course identity, its source, and the staged artifact
// directories to populate.
type RefreshRequest struct {
	CourseName    string
	SourceURL     string
	SourceBackend string
	Paths         coursecache.CoursePaths
}

// Refresher repopulates a staged cache generation from the course source.
type Refresher interface {
	Refresh(ctx context.Context, req RefreshRequest) error
}

// RefreshService rebuilds course caches, one refresh per course at a time.
type RefreshService interface {
	Refresh(ctx context.Context, courseID uint) (dto.RefreshResponse, error)
}

type refreshService struct {
	courses   repository.CourseRepository
	store     *coursecache.Store
	refresher Refresher
	events    *nats.Conn
	subject   string
	logger    zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRefreshService builds the refresh orchestrator. The NATS connection is
// optional; without it no events are published.
func NewRefreshService(courses repository.CourseRepository, store *coursecache.Store, refresher Refresher, events *nats.Conn, subject string, logger zerolog.Logger) RefreshService {
	return &refreshService{
		courses:   courses,
		store:     store,
		refresher: refresher,
		events:    events,
		subject:   subject,
		logger:    logger.With().Str("component", "refresh_service").Logger(),
		locks:     map[string]*sync.Mutex{},
	}
}

// Refresh stages the next cache generation, hands it to the refresher, and
// commits it atomically on success. Concurrent refreshes of the same course
// serialize on a per-course lock; refreshes of different courses proceed
// independently. A canceled context yields ErrRefreshCanceled and the
// last-known-good cache.
func (s *refreshService) Refresh(ctx context.Context, courseID uint) (dto.RefreshResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RefreshResponse{}, ErrCourseNotFound
		}
		return dto.RefreshResponse{}, err
	}

	lock := s.lockFor(course.Name)
	lock.Lock()
	defer lock.Unlock()

	// Re-read inside the lock: a refresh that just finished has bumped the
	// cache version.
	course, err = s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RefreshResponse{}, ErrCourseNotFound
		}
		return dto.RefreshResponse{}, err
	}

	start := time.Now()
	nextVersion := course.CacheVersion + 1

	staging, err := s.store.BeginStaging(course.Name, nextVersion)
	if err != nil {
		observability.RefreshOutcomes().WithLabelValues(course.Name, "failure").Inc()
		return dto.RefreshResponse{}, err
	}

	err = s.refresher.Refresh(ctx, RefreshRequest{
		CourseName:    course.Name,
		SourceURL:     course.SourceURL,
		SourceBackend: course.SourceBackend,
		Paths:         staging.Paths,
	})
	if err != nil {
		s.store.Abort(staging)

		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			observability.RefreshOutcomes().WithLabelValues(course.Name, "canceled").Inc()
			s.logger.Warn().Uint("course_id", courseID).Str("course", course.Name).Msg("course refresh canceled")
			return dto.RefreshResponse{}, fmt.Errorf("%w: %v", ErrRefreshCanceled, err)
		}

		observability.RefreshOutcomes().WithLabelValues(course.Name, "failure").Inc()
		s.logger.Error().Err(err).Uint("course_id", courseID).Str("course", course.Name).Msg("course refresh failed")
		return dto.RefreshResponse{}, fmt.Errorf("refreshing course %q: %w", course.Name, err)
	}

	paths, err := s.store.Commit(staging)
	if err != nil {
		s.store.Abort(staging)
		observability.RefreshOutcomes().WithLabelValues(course.Name, "failure").Inc()
		return dto.RefreshResponse{}, err
	}

	if err := s.courses.SetCacheVersion(ctx, course.ID, nextVersion); err != nil {
		observability.RefreshOutcomes().WithLabelValues(course.Name, "failure").Inc()
		return dto.RefreshResponse{}, fmt.Errorf("persisting cache version for course %q: %w", course.Name, err)
	}

	revision := s.store.HeadRevision(ctx, paths.Clone)
	duration := time.Since(start)

	observability.RefreshDuration().WithLabelValues(course.Name).Observe(duration.Seconds())
	observability.RefreshOutcomes().WithLabelValues(course.Name, "success").Inc()

	response := dto.RefreshResponse{
		CourseID:     course.ID,
		CacheVersion: nextVersion,
		Revision:     revision,
		Duration:     duration,
	}

	s.publishRefreshed(response, course.Name)

	s.logger.Info().
		Uint("course_id", course.ID).
		Str("course", course.Name).
		Int("cache_version", nextVersion).
		Str("revision", revision).
		Dur("duration", duration).
		Msg("course cache refreshed")

	return response, nil
}

func (s *refreshService) lockFor(courseName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[courseName]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[courseName] = lock
	}
	return lock
}

func (s *refreshService) publishRefreshed(response dto.RefreshResponse, courseName string) {
	if s.events == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"course_id":     response.CourseID,
		"course_name":   courseName,
		"cache_version": response.CacheVersion,
		"revision":      response.Revision,
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("course", courseName).Msg("failed to publish refresh event")
	}
}

// GitRefresher is the built-in refresher: it clones the course repository
// into the staged clone directory. Stub and solution generation is performed
// by external tooling over the clone.
type GitRefresher struct {
	cloner vcs.Cloner
}

// NewGitRefresher builds a refresher backed by a repository cloner.
func NewGitRefresher(cloner vcs.Cloner) *GitRefresher {
	return &GitRefresher{cloner: cloner}
}

// Refresh clones the source repository into the staged clone path.
func (g *GitRefresher) Refresh(ctx context.Context, req RefreshRequest) error {
	if req.SourceBackend != "git" {
		return fmt.Errorf("unsupported source backend %q", req.SourceBackend)
	}

	return g.cloner.Clone(ctx, req.SourceURL, req.Paths.Clone)
}
