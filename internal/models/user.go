// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a user account in the Mosaic application.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    string `json:"avatar"`
	FirstName string `gorm:"not null" json:"firstname"`
	LastName  string `gorm:"not null" json:"lastname"`
	Mobile    string `json:"mobile"`
	Story     string `gorm:"type:text" json:"story"`
	Gender    string `json:"gender"`
	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->" json:"followers_count"`
	// FollowingsCount is not persisted; computed at query time
	FollowingsCount int `gorm:"->" json:"followings_count"`
	// Following indicates whether the current requesting user follows this user (computed)
	Following bool `gorm:"->" json:"following"`
	// Followers and Followings carry profile summaries on densified responses.
	Followers  []UserSummary `gorm:"-" json:"followers,omitempty"`
	Followings []UserSummary `gorm:"-" json:"followings,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// UserSummary is the compact profile representation attached to densified
// payloads (post authors, likers, follower lists).
type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// Summary returns the compact profile representation of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
