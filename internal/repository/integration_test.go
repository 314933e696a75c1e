package repository

import (
	"context"
	"testing"

	"mosaic/internal/database"
	"mosaic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// The engagement SQL deliberately uses CURRENT_TIMESTAMP and
// ON CONFLICT ... DO NOTHING, both of which sqlite shares with Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive across queries.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestIntegration_DoubleLikeIsRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")
	post := &models.Post{Caption: "first", UserID: author.ID,
		Images: []models.PostImage{{Position: 0, AssetID: "a", URL: "u"}}}
	require.NoError(t, repo.Create(ctx, post))

	created, err := repo.Like(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Like(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, created, "second like must hit the unique pair and create nothing")

	got, err := repo.GetByID(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)
}

func TestIntegration_UnlikeWithoutLike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := &models.Post{Caption: "x", UserID: author.ID,
		Images: []models.PostImage{{Position: 0, AssetID: "a", URL: "u"}}}
	require.NoError(t, repo.Create(ctx, post))

	removed, err := repo.Unlike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestIntegration_FollowGraphIsSymmetric(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	created, err := repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, created)

	// The same row backs both views.
	bobFollowers, err := repo.GetFollowers(ctx, bob.ID)
	require.NoError(t, err)
	aliceFollowings, err := repo.GetFollowings(ctx, alice.ID)
	require.NoError(t, err)

	require.Len(t, bobFollowers, 1)
	require.Len(t, aliceFollowings, 1)
	assert.Equal(t, alice.ID, bobFollowers[0].ID)
	assert.Equal(t, bob.ID, aliceFollowings[0].ID)

	// Unfollow removes both views at once.
	removed, err := repo.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, removed)

	bobFollowers, err = repo.GetFollowers(ctx, bob.ID)
	require.NoError(t, err)
	aliceFollowings, err = repo.GetFollowings(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFollowers)
	assert.Empty(t, aliceFollowings)
}

func TestIntegration_DeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")

	post := &models.Post{Caption: "doomed", UserID: author.ID,
		Images: []models.PostImage{{Position: 0, AssetID: "a", URL: "u"}}}
	require.NoError(t, postRepo.Create(ctx, post))

	for i := 0; i < 3; i++ {
		comment := &models.Comment{
			Content:     "hi",
			PostID:      post.ID,
			PostOwnerID: author.ID,
			UserID:      commenter.ID,
		}
		require.NoError(t, commentRepo.Create(ctx, comment))
		_, err := commentRepo.Like(ctx, author.ID, comment.ID)
		require.NoError(t, err)
	}
	_, err := postRepo.Like(ctx, commenter.ID, post.ID)
	require.NoError(t, err)
	_, err = postRepo.Save(ctx, commenter.ID, post.ID)
	require.NoError(t, err)

	commentsDeleted, err := postRepo.Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), commentsDeleted)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.CommentLike{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.SavedPost{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.PostImage{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = postRepo.GetByID(ctx, post.ID, 0)
	require.Error(t, err)
}

func TestIntegration_FeedContainsSelfAndFollowed(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	me := createTestUser(t, db, "me")
	friend := createTestUser(t, db, "friend")
	stranger := createTestUser(t, db, "stranger")

	_, err := userRepo.Follow(ctx, me.ID, friend.ID)
	require.NoError(t, err)

	for _, u := range []*models.User{me, friend, stranger} {
		post := &models.Post{Caption: u.Username, UserID: u.ID,
			Images: []models.PostImage{{Position: 0, AssetID: "a", URL: "u"}}}
		require.NoError(t, postRepo.Create(ctx, post))
	}

	feed, err := postRepo.ListFeed(ctx, me.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, p := range feed {
		assert.NotEqual(t, stranger.ID, p.UserID)
	}
}

func TestIntegration_ImagesPreservePosition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := &models.Post{
		Caption: "ordered",
		UserID:  author.ID,
		Images: []models.PostImage{
			{Position: 0, AssetID: "first", URL: "u0"},
			{Position: 1, AssetID: "second", URL: "u1"},
			{Position: 2, AssetID: "third", URL: "u2"},
		},
	}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.Equal(t, "first", got.Images[0].AssetID)
	assert.Equal(t, "third", got.Images[2].AssetID)

	require.NoError(t, repo.ReplaceImages(ctx, post.ID, []models.PostImage{
		{Position: 0, AssetID: "replacement", URL: "r0"},
	}))

	got, err = repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "replacement", got.Images[0].AssetID)
}
