package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// likeEscapeChar neutralizes LIKE metacharacters in group-derived patterns.
const likeEscapeChar = "!"

// UserPointCount is one row of a per-user award aggregation.
type UserPointCount struct {
	UserID uint
	Count  int
}

// PointsRepository runs the grouped, pattern-matched queries the completion
// statistics are built from.
type PointsRepository interface {
	ExerciseNames(ctx context.Context, courseID uint) ([]string, error)
	AvailablePointNames(ctx context.Context, courseID uint, group string) ([]string, error)
	AwardedCountsByUser(ctx context.Context, courseID uint, pointNames []string) ([]UserPointCount, error)
	AwardPoint(ctx context.Context, point *models.AwardedPoint) error
}

type pointsRepository struct {
	db *gorm.DB
}

// NewPointsRepository instantiates a GORM-backed repository.
func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) ExerciseNames(ctx context.Context, courseID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Where("course_id = ?", courseID).
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}

	return names, nil
}

// AvailablePointNames returns the point names defined by exercises of the
// course whose name belongs to the given group. The group is matched as a
// literal prefix: LIKE metacharacters inside it are escaped so a group such
// as "a%b" cannot widen the match.
func (r *pointsRepository) AvailablePointNames(ctx context.Context, courseID uint, group string) ([]string, error) {
	pattern := EscapeLike(group) + "-%"

	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.AvailablePoint{}).
		Joins("JOIN exercises ON exercises.id = available_points.exercise_id").
		Where("exercises.course_id = ?", courseID).
		Where("exercises.name LIKE ? ESCAPE '"+likeEscapeChar+"'", pattern).
		Pluck("available_points.name", &names).Error
	if err != nil {
		return nil, err
	}

	return names, nil
}

func (r *pointsRepository) AwardedCountsByUser(ctx context.Context, courseID uint, pointNames []string) ([]UserPointCount, error) {
	if len(pointNames) == 0 {
		return nil, nil
	}

	var counts []UserPointCount
	err := r.db.WithContext(ctx).
		Model(&models.AwardedPoint{}).
		Select("user_id, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Where("name IN ?", pointNames).
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *pointsRepository) AwardPoint(ctx context.Context, point *models.AwardedPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself so the input matches only as a literal string.
func EscapeLike(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch r {
		case '%', '_', '!':
			b.WriteString(likeEscapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}
