package models

import "time"

// User is a participant. Guests are unauthenticated visitors; administrators
// bypass visibility rules.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Login         string    `gorm:"size:255;uniqueIndex" json:"login"`
	Administrator bool      `gorm:"not null;default:false" json:"administrator"`
	Guest         bool      `gorm:"-" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GuestUser returns the placeholder identity for unauthenticated requests.
func GuestUser() User {
	return User{Guest: true}
}
