// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"mosaic/internal/cache"
	"mosaic/internal/models"
	"mosaic/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	Update(ctx context.Context, user *models.User) error
	Follow(ctx context.Context, followerID, followeeID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error)
	GetFollowings(ctx context.Context, userID uint) ([]models.UserSummary, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyUserDetails adds subqueries to fetch follow counts and the
// requesting user's follow status in a single query.
func (r *userRepository) applyUserDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) as followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as followings_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM follows WHERE follows.followee_id = users.id AND follows.follower_id = ?) as following", currentUserID)
	}

	return db.Select(selectQuery + ", false as following")
}

func (r *userRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", "users")()
	var user models.User

	load := func() error {
		return r.applyUserDetails(r.db.WithContext(ctx), currentUserID).
			First(&user, id).Error
	}

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, load)
	} else {
		err = load()
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	defer observability.TrackQuery("search", "users")()
	var users []models.UserSummary
	like := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"avatar":     user.Avatar,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"mobile":     user.Mobile,
			"story":      user.Story,
			"gender":     user.Gender,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Follow inserts a single edge into the follow graph. The unique pair index
// makes the insert idempotent; the returned bool reports whether a new edge
// was actually created.
func (r *userRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	defer observability.TrackQuery("follow", "follows")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "FollowUser", "follows")
	defer span.End()
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (follower_id, followee_id) DO NOTHING",
		followerID, followeeID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followeeID)
	}
	return result.RowsAffected > 0, nil
}

// Unfollow removes the edge. The returned bool reports whether an edge existed.
func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	defer observability.TrackQuery("unfollow", "follows")()
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followeeID)
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	defer observability.TrackQuery("get_followers", "follows")()
	var users []models.UserSummary
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.follower_id").
		Where("f.followee_id = ?", userID).
		Order("f.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetFollowings(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	defer observability.TrackQuery("get_followings", "follows")()
	var users []models.UserSummary
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.followee_id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
