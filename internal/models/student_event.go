package models

import (
	"time"

	"gorm.io/datatypes"
)

// StudentEvent is a free-form activity record scoped to a course, such as an
// IDE snapshot or a page view reported by a client.
type StudentEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CourseID   uint           `gorm:"index;not null" json:"course_id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	EventType  string         `gorm:"size:128;not null" json:"event_type"`
	Data       datatypes.JSON `gorm:"type:json" json:"data"`
	HappenedAt time.Time      `json:"happened_at"`
	CreatedAt  time.Time      `json:"created_at"`
}
