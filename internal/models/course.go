package models

import "time"

// DefaultSourceBackend is applied when a course is created without one.
const DefaultSourceBackend = "git"

// ValidSourceBackends lists the supported course source backends.
func ValidSourceBackends() []string {
	return []string{"git"}
}

// Course is a unit of curriculum backed by a source repository.
type Course struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	Name                    string     `gorm:"size:40;uniqueIndex;not null" json:"name"`
	SourceURL               string     `gorm:"size:512;not null" json:"source_url"`
	SourceBackend           string     `gorm:"size:32;not null" json:"source_backend"`
	Hidden                  bool       `gorm:"not null;default:false" json:"hidden"`
	HideAfter               *time.Time `json:"hide_after"`
	HiddenIfRegisteredAfter *time.Time `json:"hidden_if_registered_after"`
	SpreadsheetKey          string     `gorm:"size:255" json:"spreadsheet_key"`
	CacheVersion            int        `gorm:"not null;default:0" json:"cache_version"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`

	Exercises               []Exercise              `json:"-"`
	Submissions             []Submission            `json:"-"`
	AwardedPoints           []AwardedPoint          `json:"-"`
	FeedbackQuestions       []FeedbackQuestion      `json:"-"`
	StudentEvents           []StudentEvent          `json:"-"`
	TestScannerCacheEntries []TestScannerCacheEntry `json:"-"`
}

// VisibleTo decides whether the course can be shown to user at the given
// instant. Administrators see every course.
func (c Course) VisibleTo(user User, now time.Time) bool {
	if user.Administrator {
		return true
	}

	if c.Hidden {
		return false
	}

	if c.HideAfter != nil && !c.HideAfter.After(now) {
		return false
	}

	if c.HiddenIfRegisteredAfter != nil {
		if user.Guest || !c.HiddenIfRegisteredAfter.After(user.CreatedAt) {
			return false
		}
	}

	return true
}

// Ongoing reports whether the course has not yet passed its hide-after cutoff.
func (c Course) Ongoing(now time.Time) bool {
	return c.HideAfter == nil || c.HideAfter.After(now)
}
