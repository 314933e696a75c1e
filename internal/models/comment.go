package models

import (
	"time"
)

// Comment represents a comment on a post.
// PostOwnerID is denormalized from the post at creation time so the
// author-or-post-owner delete check needs no join.
type Comment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Content     string `gorm:"type:text;not null" json:"content"`
	PostID      uint   `gorm:"not null;index" json:"post_id"`
	PostOwnerID uint   `gorm:"not null" json:"post_owner_id"`
	UserID      uint   `gorm:"not null" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this comment (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Likers carries profile summaries of liking users on densified responses.
	Likers    []UserSummary `gorm:"-" json:"likes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
