package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FirstSubmissionAt(ctx context.Context, courseID uint) (*time.Time, error)
	LastSubmissionAt(ctx context.Context, courseID uint) (*time.Time, error)
	ListRequiringReview(ctx context.Context, courseID uint, includeReviewed bool) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) FirstSubmissionAt(ctx context.Context, courseID uint) (*time.Time, error) {
	return r.submissionTime(ctx, courseID, "created_at ASC")
}

func (r *submissionRepository) LastSubmissionAt(ctx context.Context, courseID uint) (*time.Time, error) {
	return r.submissionTime(ctx, courseID, "created_at DESC")
}

func (r *submissionRepository) submissionTime(ctx context.Context, courseID uint, order string) (*time.Time, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order(order).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &submission.CreatedAt, nil
}

func (r *submissionRepository) ListRequiringReview(ctx context.Context, courseID uint, includeReviewed bool) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("requires_review OR requests_review")
	if !includeReviewed {
		query = query.Where("NOT reviewed")
	}

	var submissions []models.Submission
	if err := query.Order("created_at ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
