package repository

import (
	"context"
	"errors"

	"mosaic/internal/cache"
	"mosaic/internal/models"
	"mosaic/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, commentID uint) (bool, error)
	Unlike(ctx context.Context, userID, commentID uint) (bool, error)
	GetLikers(ctx context.Context, commentID uint) ([]models.UserSummary, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// applyCommentDetails adds subqueries to fetch the like count and the
// requesting user's like status in a single query.
func (r *commentRepository) applyCommentDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	defer observability.TrackQuery("get_by_id", "comments")()
	var comment models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_post", "comments")()
	var comments []*models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("update", "comments")()
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// Delete removes the comment and its likes in one transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "comments")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records the like atomically; the bool reports whether it was newly created.
func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) (bool, error) {
	defer observability.TrackQuery("like", "comment_likes")()
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO comment_likes (user_id, comment_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, comment_id) DO NOTHING",
		userID, commentID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) (bool, error) {
	defer observability.TrackQuery("unlike", "comment_likes")()
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) GetLikers(ctx context.Context, commentID uint) ([]models.UserSummary, error) {
	defer observability.TrackQuery("get_likers", "comment_likes")()
	var users []models.UserSummary
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN comment_likes cl ON users.id = cl.user_id").
		Where("cl.comment_id = ?", commentID).
		Order("cl.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
