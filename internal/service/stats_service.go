package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/observability"
	"github.com/noah-isme/kursus-go-api/internal/repository"
)

// StatsService aggregates awarded points into per-group completion reports
// and summarises submission activity.
type StatsService interface {
	CompletionByGroup(ctx context.Context, courseID uint) (dto.CompletionReport, error)
	Activity(ctx context.Context, courseID uint) (dto.CourseActivity, error)
}

type statsService struct {
	courses     repository.CourseRepository
	points      repository.PointsRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewStatsService builds the completion aggregator. The redis client is
// optional; without it every call recomputes from the database.
func NewStatsService(courses repository.CourseRepository, points repository.PointsRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		courses:     courses,
		points:      points,
		submissions: submissions,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("component", "stats_service").Logger(),
	}
}

// CompletionByGroup reports, per exercise group of the course, how many
// points are available and how many each user has been awarded. Groups with
// no available points are omitted; users with zero awards are absent from
// the per-user map. Query failures propagate; an outage never masquerades
// as an empty report.
func (s *statsService) CompletionByGroup(ctx context.Context, courseID uint) (dto.CompletionReport, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// The cache key carries the cache version, so a refresh naturally
	// starts a fresh cache generation.
	cacheKey := fmt.Sprintf("stats:completion:%d:v%d", course.ID, course.CacheVersion)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var report dto.CompletionReport
			if unmarshalErr := json.Unmarshal([]byte(cached), &report); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Msg("completion cache hit")
				return report, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read completion cache")
		}
	}

	start := time.Now()
	report, err := s.compute(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	observability.CompletionQueryLatency().WithLabelValues("database").Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store completion cache")
			}
		}
	}

	return report, nil
}

// Activity reports the first and last submission times on a course along
// with the number of submissions still awaiting review.
func (s *statsService) Activity(ctx context.Context, courseID uint) (dto.CourseActivity, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseActivity{}, ErrCourseNotFound
		}
		return dto.CourseActivity{}, err
	}

	first, err := s.submissions.FirstSubmissionAt(ctx, courseID)
	if err != nil {
		return dto.CourseActivity{}, fmt.Errorf("resolving first submission: %w", err)
	}

	last, err := s.submissions.LastSubmissionAt(ctx, courseID)
	if err != nil {
		return dto.CourseActivity{}, fmt.Errorf("resolving last submission: %w", err)
	}

	pending, err := s.submissions.ListRequiringReview(ctx, courseID, false)
	if err != nil {
		return dto.CourseActivity{}, fmt.Errorf("listing submissions awaiting review: %w", err)
	}

	return dto.CourseActivity{
		FirstSubmissionAt: first,
		LastSubmissionAt:  last,
		AwaitingReview:    len(pending),
	}, nil
}

func (s *statsService) compute(ctx context.Context, courseID uint) (dto.CompletionReport, error) {
	names, err := s.points.ExerciseNames(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing exercise names: %w", err)
	}

	report := dto.CompletionReport{}
	for _, group := range distinctGroups(names) {
		pointNames, err := s.points.AvailablePointNames(ctx, courseID, group)
		if err != nil {
			return nil, fmt.Errorf("resolving available points for group %q: %w", group, err)
		}
		if len(pointNames) == 0 {
			continue
		}

		counts, err := s.points.AwardedCountsByUser(ctx, courseID, pointNames)
		if err != nil {
			return nil, fmt.Errorf("counting awarded points for group %q: %w", group, err)
		}

		byUser := make(map[uint]int, len(counts))
		for _, row := range counts {
			byUser[row.UserID] = row.Count
		}

		report[group] = dto.GroupCompletion{
			GroupName:           group,
			AvailablePointCount: len(pointNames),
			PointsByUser:        byUser,
		}
	}

	return report, nil
}

// distinctGroups derives the set of exercise groups from exercise names.
// Sorting is for deterministic query order only; the report itself is a map.
func distinctGroups(names []string) []string {
	seen := map[string]struct{}{}
	for _, name := range names {
		group, _ := models.SplitName(name)
		seen[group] = struct{}{}
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}
