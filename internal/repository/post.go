package repository

import (
	"context"
	"errors"

	"mosaic/internal/cache"
	"mosaic/internal/models"
	"mosaic/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceImages(ctx context.Context, postID uint, images []models.PostImage) error
	Delete(ctx context.Context, id uint) (int64, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	Save(ctx context.Context, userID, postID uint) (bool, error)
	Unsave(ctx context.Context, userID, postID uint) (bool, error)
	GetLikers(ctx context.Context, postID uint) ([]models.UserSummary, error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create persists the post and its images in one transaction so a post can
// never exist without its full image set.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyPostDetails adds subqueries to fetch counts and the requesting user's
// engagement status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked"+
			", EXISTS(SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) as saved",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as liked, false as saved")
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetPostByID", "posts")
	defer span.End()
	var post models.Post

	load := func() error {
		return r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			Preload("Images", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			First(&post, id).Error
	}

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, load)
	} else {
		err = load()
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("get_by_user_id", "posts")()
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListFeed returns the home feed: the user's own posts plus posts from every
// account they follow, newest first.
func (r *postRepository) ListFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_feed", "posts")()
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ? OR user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Update("caption", post.Caption).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// ReplaceImages swaps the post's full image set inside one transaction.
func (r *postRepository) ReplaceImages(ctx context.Context, postID uint, images []models.PostImage) error {
	defer observability.TrackQuery("replace_images", "post_images")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].PostID = postID
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// Delete removes the post and everything hanging off it: comments, likes on
// those comments, likes and saves of the post itself, and the image records.
// Returns the number of comments deleted with the post.
func (r *postRepository) Delete(ctx context.Context, id uint) (int64, error) {
	defer observability.TrackQuery("delete", "posts")()
	var commentsDeleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)", id,
		).Error; err != nil {
			return err
		}

		result := tx.Where("post_id = ?", id).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		commentsDeleted = result.RowsAffected

		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return commentsDeleted, nil
}

// Like records the like atomically: the conflict check and the insert are a
// single statement, so concurrent duplicates cannot slip through. The bool
// reports whether the like was newly created.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("like", "likes")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "LikePost", "likes")
	defer span.End()
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
		userID, postID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("unlike", "likes")()
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Save(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("save", "saved_posts")()
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO saved_posts (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
		userID, postID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unsave(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("unsave", "saved_posts")()
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) GetLikers(ctx context.Context, postID uint) ([]models.UserSummary, error) {
	defer observability.TrackQuery("get_likers", "likes")()
	var users []models.UserSummary
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN likes l ON users.id = l.user_id").
		Where("l.post_id = ?", postID).
		Order("l.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *postRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_saved", "saved_posts")()
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Joins("JOIN saved_posts sp ON sp.post_id = posts.id").
		Where("sp.user_id = ?", userID).
		Order("sp.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
