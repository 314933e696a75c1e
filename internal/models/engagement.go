package models

import (
	"time"
)

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike represents a user's like on a comment.
// The combination of UserID and CommentID must be unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost represents a post saved by a user.
// The combination of UserID and PostID must be unique.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is one edge of the follow graph: FollowerID follows FolloweeID.
// A single row serves both directions ("A's followers" and "B's followings"
// read the same row), which keeps the graph symmetric by construction.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
