package models

import "time"

// FeedbackQuestion is a per-course feedback prompt shown after submissions.
type FeedbackQuestion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Kind      string    `gorm:"size:64" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answers []FeedbackAnswer `gorm:"foreignKey:FeedbackQuestionID" json:"-"`
}

// FeedbackAnswer is a student's answer to a feedback question.
type FeedbackAnswer struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	FeedbackQuestionID uint      `gorm:"index;not null" json:"feedback_question_id"`
	SubmissionID       *uint     `json:"submission_id"`
	UserID             uint      `gorm:"index;not null" json:"user_id"`
	Answer             string    `gorm:"type:text" json:"answer"`
	CreatedAt          time.Time `json:"created_at"`
}
