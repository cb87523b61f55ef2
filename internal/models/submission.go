package models

import "time"

// Submission is a student's answer to an exercise.
type Submission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CourseID       uint      `gorm:"index;not null" json:"course_id"`
	ExerciseID     uint      `gorm:"index;not null" json:"exercise_id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	RequiresReview bool      `gorm:"not null;default:false" json:"requires_review"`
	RequestsReview bool      `gorm:"not null;default:false" json:"requests_review"`
	Reviewed       bool      `gorm:"not null;default:false" json:"reviewed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
