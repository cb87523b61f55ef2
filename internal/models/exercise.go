package models

import (
	"strings"
	"time"
)

// Exercise is an assignable task within a course. Its name may encode an
// exercise group via the `<group>-<leaf>` naming convention.
type Exercise struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CourseID             uint       `gorm:"index;not null" json:"course_id"`
	Name                 string     `gorm:"size:255;not null;index" json:"name"`
	Deadline             *time.Time `json:"deadline"`
	PublishTime          *time.Time `json:"publish_time"`
	SolutionVisibleAfter *time.Time `json:"solution_visible_after"`
	GdocsSheet           string     `gorm:"size:255" json:"gdocs_sheet"`
	Deleted              bool       `gorm:"not null;default:false" json:"deleted"`
	Disabled             bool       `gorm:"not null;default:false" json:"disabled"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	AvailablePoints []AvailablePoint `json:"-"`
}

// SplitName parses an exercise name into its group and leaf parts. The group
// is the name with the last dash-separated suffix stripped; a name without a
// dash belongs to the empty group. The split is a pure function of the name,
// which makes it a stable aggregation key.
func SplitName(name string) (group, leaf string) {
	idx := strings.LastIndex(name, "-")
	if idx <= 0 || idx == len(name)-1 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// Group returns the exercise's group name.
func (e Exercise) Group() string {
	group, _ := SplitName(e.Name)
	return group
}

// VisibleTo decides whether the exercise can be shown to user at the given
// instant. Administrators see everything that is not deleted.
func (e Exercise) VisibleTo(course Course, user User, now time.Time) bool {
	if e.Deleted {
		return false
	}

	if user.Administrator {
		return true
	}

	if e.Disabled || !course.VisibleTo(user, now) {
		return false
	}

	return e.PublishTime == nil || !e.PublishTime.After(now)
}
