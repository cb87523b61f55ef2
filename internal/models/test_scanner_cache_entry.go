package models

import "time"

// TestScannerCacheEntry memoizes the result of scanning a course's test
// files, keyed by a hash of the scanned file set. Entries are derived data;
// deleting a course discards them wholesale.
type TestScannerCacheEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_test_scanner_cache_course_hash" json:"course_id"`
	FilesHash string    `gorm:"size:128;not null;uniqueIndex:idx_test_scanner_cache_course_hash" json:"files_hash"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
