// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"mosaic/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// spreadCreatedAt returns a timestamp up to maxDays in the past for a
// realistic created_at distribution.
func (f *Factory) spreadCreatedAt(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	return time.Now().
		Add(-time.Duration(f.rnd.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(f.rnd.Intn(24)) * time.Hour).
		Add(-time.Duration(f.rnd.Intn(60)) * time.Minute)
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	genders := []string{"male", "female", ""}
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Mobile:    gofakeit.Phone(),
		Story:     gofakeit.Sentence(12),
		Gender:    genders[f.rnd.Intn(len(genders))],
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post with 1-4 images for the user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	imageCount := 1 + f.rnd.Intn(4)
	images := make([]models.PostImage, imageCount)
	for i := range images {
		assetID := gofakeit.UUID()
		images[i] = models.PostImage{
			Position: i,
			AssetID:  assetID,
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", assetID),
		}
	}

	post := &models.Post{
		Caption:   gofakeit.Sentence(8),
		UserID:    user.ID,
		Images:    images,
		CreatedAt: f.spreadCreatedAt(90),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     gofakeit.Sentence(6 + f.rnd.Intn(10)),
		PostID:      post.ID,
		PostOwnerID: post.UserID,
		UserID:      user.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// LikePost records a like; duplicate pairs are silently skipped.
func (f *Factory) LikePost(user *models.User, post *models.Post) error {
	return f.db.Exec(
		"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
		user.ID, post.ID,
	).Error
}

// SavePost records a save; duplicate pairs are silently skipped.
func (f *Factory) SavePost(user *models.User, post *models.Post) error {
	return f.db.Exec(
		"INSERT INTO saved_posts (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
		user.ID, post.ID,
	).Error
}

// Follow records a follow edge; self-follows and duplicates are skipped.
func (f *Factory) Follow(follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return nil
	}
	return f.db.Exec(
		"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (follower_id, followee_id) DO NOTHING",
		follower.ID, followee.ID,
	).Error
}
