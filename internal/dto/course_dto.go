package dto

import (
	"time"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

// CourseCreateRequest is the payload for creating a course. Date fields
// accept either precise timestamps or bare calendar dates.
type CourseCreateRequest struct {
	Name                    string `json:"name" validate:"required,min=1,max=40,excludesall= "`
	SourceURL               string `json:"source_url" validate:"required"`
	SourceBackend           string `json:"source_backend"`
	Hidden                  bool   `json:"hidden"`
	HideAfter               string `json:"hide_after"`
	HiddenIfRegisteredAfter string `json:"hidden_if_registered_after"`
	SpreadsheetKey          string `json:"spreadsheet_key"`
}

// CourseUpdateRequest is the payload for partially updating a course.
type CourseUpdateRequest struct {
	SourceURL      *string `json:"source_url" validate:"omitempty,min=1"`
	SourceBackend  *string `json:"source_backend"`
	SpreadsheetKey *string `json:"spreadsheet_key"`
}

// CourseOptionsRequest mirrors the visibility option form: blank date
// fields clear the corresponding cutoffs.
type CourseOptionsRequest struct {
	Hidden                  bool   `json:"hidden"`
	HideAfter               string `json:"hide_after"`
	HiddenIfRegisteredAfter string `json:"hidden_if_registered_after"`
	SpreadsheetKey          string `json:"spreadsheet_key"`
}

// CourseResponse is the course representation returned to clients.
type CourseResponse struct {
	ID                      uint       `json:"id"`
	Name                    string     `json:"name"`
	SourceURL               string     `json:"source_url"`
	SourceBackend           string     `json:"source_backend"`
	Hidden                  bool       `json:"hidden"`
	HideAfter               *time.Time `json:"hide_after"`
	HiddenIfRegisteredAfter *time.Time `json:"hidden_if_registered_after"`
	SpreadsheetKey          string     `json:"spreadsheet_key"`
	CacheVersion            int        `json:"cache_version"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// NewCourseResponse maps a course model to its response shape.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:                      course.ID,
		Name:                    course.Name,
		SourceURL:               course.SourceURL,
		SourceBackend:           course.SourceBackend,
		Hidden:                  course.Hidden,
		HideAfter:               course.HideAfter,
		HiddenIfRegisteredAfter: course.HiddenIfRegisteredAfter,
		SpreadsheetKey:          course.SpreadsheetKey,
		CacheVersion:            course.CacheVersion,
		CreatedAt:               course.CreatedAt,
		UpdatedAt:               course.UpdatedAt,
	}
}

// NewCourseResponseSlice maps a slice of course models.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
