package auth

import "gorm.io/gorm"

// User is the principal resolved from a GitHub login. Anywhere a
// *User may be nil the caller is an anonymous viewer.
type User struct {
	gorm.Model
	Login     string `gorm:"uniqueIndex" json:"login"`
	Name      string `json:"name"`
	AvatarUrl string `json:"avatar_url"`
}
