package dto

import (
	"time"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// ExerciseResponse is the per-exercise record exposed to clients. Deadline
// carries the effective per-user deadline, not the raw stored one.
type ExerciseResponse struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	PublishTime          *time.Time `json:"publish_time"`
	SolutionVisibleAfter *time.Time `json:"solution_visible_after"`
	Deadline             *time.Time `json:"deadline"`
	Disabled             bool       `json:"disabled"`
	AvailablePoints      []string   `json:"available_points"`
}

// NewExerciseResponse maps an exercise model to its response shape using the
// already-resolved effective deadline.
func NewExerciseResponse(exercise models.Exercise, deadline *time.Time) ExerciseResponse {
	points := make([]string, 0, len(exercise.AvailablePoints))
	for _, point := range exercise.AvailablePoints {
		points = append(points, point.Name)
	}

	return ExerciseResponse{
		ID:                   exercise.ID,
		Name:                 exercise.Name,
		CreatedAt:            exercise.CreatedAt,
		UpdatedAt:            exercise.UpdatedAt,
		PublishTime:          exercise.PublishTime,
		SolutionVisibleAfter: exercise.SolutionVisibleAfter,
		Deadline:             deadline,
		Disabled:             exercise.Disabled,
		AvailablePoints:      points,
	}
}
