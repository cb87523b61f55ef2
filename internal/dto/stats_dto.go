package dto

import "time"

// GroupCompletion summarises point completion for one exercise group. Users
// with zero awarded points in the group are absent from PointsByUser; absence
// and zero are the same fact.
type GroupCompletion struct {
	GroupName           string       `json:"group_name"`
	AvailablePointCount int          `json:"available_point_count"`
	PointsByUser        map[uint]int `json:"points_by_user"`
}

// CompletionReport maps exercise group names to their completion summaries.
type CompletionReport map[string]GroupCompletion

// CourseActivity summarises submission activity on a course. Times are nil
// when the course has no submissions at all.
type CourseActivity struct {
	FirstSubmissionAt *time.Time `json:"first_submission_at"`
	LastSubmissionAt  *time.Time `json:"last_submission_at"`
	AwaitingReview    int        `json:"awaiting_review"`
}

// RefreshResponse reports the outcome of a course refresh.
type RefreshResponse struct {
	CourseID     uint          `json:"course_id"`
	CacheVersion int           `json:"cache_version"`
	Revision     string        `json:"revision"`
	Duration     time.Duration `json:"duration_ns"`
}
