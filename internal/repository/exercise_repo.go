package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// ExerciseRepository defines persistence operations for exercises.
type ExerciseRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Exercise, error)
	GetByID(ctx context.Context, id uint) (models.Exercise, error)
	Create(ctx context.Context, exercise *models.Exercise) error
	Update(ctx context.Context, exercise *models.Exercise) error
	DistinctGdocsSheets(ctx context.Context, courseID uint) ([]string, error)
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository instantiates a GORM-backed repository.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Exercise, error) {
	var exercises []models.Exercise
	err := r.db.WithContext(ctx).
		Preload("AvailablePoints").
		Where("course_id = ?", courseID).
		Order("name ASC").
		Find(&exercises).Error
	if err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (models.Exercise, error) {
	var exercise models.Exercise
	if err := r.db.WithContext(ctx).Preload("AvailablePoints").First(&exercise, id).Error; err != nil {
		return models.Exercise{}, err
	}

	return exercise, nil
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	return r.db.WithContext(ctx).Create(exercise).Error
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	return r.db.WithContext(ctx).Save(exercise).Error
}

func (r *exerciseRepository) DistinctGdocsSheets(ctx context.Context, courseID uint) ([]string, error) {
	var sheets []string
	err := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Distinct("gdocs_sheet").
		Where("course_id = ? AND gdocs_sheet <> '' AND NOT deleted", courseID).
		Pluck("gdocs_sheet", &sheets).Error
	if err != nil {
		return nil, err
	}

	return sheets, nil
}
