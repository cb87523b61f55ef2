package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ListOngoing(ctx context.Context, now time.Time) ([]models.Course, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByName(ctx context.Context, name string) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetCacheVersion(ctx context.Context, id uint, version int) error
	DeleteCascade(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListOngoing(ctx context.Context, now time.Time) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("hide_after IS NULL OR hide_after > ?", now).
		Order("name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("hide_after IS NOT NULL AND hide_after <= ?", now).
		Order("name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetByName(ctx context.Context, name string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) SetCacheVersion(ctx context.Context, id uint, version int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Update("cache_version", version)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes a course and every row referencing it. Dependents
// are deleted with set-based bulk statements inside one transaction;
// iterating rows one by one does not scale for large award tables.
func (r *courseRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exerciseIDs := tx.Model(&models.Exercise{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("exercise_id IN (?)", exerciseIDs).Delete(&models.AvailablePoint{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.AwardedPoint{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.StudentEvent{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.TestScannerCacheEntry{}).Error; err != nil {
			return err
		}

		questionIDs := tx.Model(&models.FeedbackQuestion{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("feedback_question_id IN (?)", questionIDs).Delete(&models.FeedbackAnswer{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.FeedbackQuestion{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.Exercise{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
