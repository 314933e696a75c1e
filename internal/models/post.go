package models

import (
	"time"
)

// Post represents an image post in the Mosaic application.
// A post always carries at least one image once created.
type Post struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	Caption string      `gorm:"type:text" json:"caption"`
	UserID  uint        `gorm:"not null;index" json:"user_id"`
	User    User        `gorm:"foreignKey:UserID" json:"user"`
	Images  []PostImage `gorm:"foreignKey:PostID" json:"images"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Saved indicates whether the current requesting user saved this post (computed)
	Saved bool `gorm:"->" json:"saved"`
	// Likers carries profile summaries of liking users on densified responses.
	Likers    []UserSummary `gorm:"-" json:"likes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PostImage is one uploaded image of a post. AssetID and URL come from the
// media-host collaborator; Position preserves the order images were submitted.
type PostImage struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PostID   uint   `gorm:"not null;index" json:"-"`
	Position int    `gorm:"not null" json:"position"`
	AssetID  string `gorm:"not null" json:"asset_id"`
	URL      string `gorm:"not null" json:"url"`
}
