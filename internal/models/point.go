package models

// AvailablePoint defines a point name an exercise can award.
type AvailablePoint struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExerciseID uint   `gorm:"index;not null;uniqueIndex:idx_available_points_exercise_name" json:"exercise_id"`
	Name       string `gorm:"size:255;not null;uniqueIndex:idx_available_points_exercise_name" json:"name"`
}

// AwardedPoint records that a user received a named point in a course.
// A point is awarded at most once per (course, user, name).
type AwardedPoint struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CourseID     uint   `gorm:"not null;uniqueIndex:idx_awarded_points_course_user_name" json:"course_id"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_awarded_points_course_user_name" json:"user_id"`
	Name         string `gorm:"size:255;not null;uniqueIndex:idx_awarded_points_course_user_name" json:"name"`
	SubmissionID *uint  `json:"submission_id"`
}
