// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"strings"

	"mosaic/internal/models"
	"mosaic/internal/observability"
	"mosaic/internal/repository"
	"mosaic/internal/uploader"
)

type PostService struct {
	postRepo repository.PostRepository
	uploads  uploader.Uploader
}

type CreatePostInput struct {
	UserID  uint
	Caption string
	Images  []string // base64 payloads or data URLs
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Caption string
	Images  []string // empty keeps the current image set
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// DeletePostResult carries the removed post and what the cascade took with it.
type DeletePostResult struct {
	Post            *models.Post `json:"post"`
	CommentsDeleted int64        `json:"comments_deleted"`
}

func NewPostService(postRepo repository.PostRepository, uploads uploader.Uploader) *PostService {
	return &PostService{postRepo: postRepo, uploads: uploads}
}

const (
	maxCaptionLen    = 2200
	maxImagesPerPost = 10
)

// uploadImages decodes and uploads every payload. All uploads must succeed;
// one failure fails the whole batch and nothing is persisted.
func (s *PostService) uploadImages(ctx context.Context, payloads []string) ([]models.PostImage, error) {
	raw := make([][]byte, len(payloads))
	for i, p := range payloads {
		decoded, err := uploader.DecodePayload(p)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		raw[i] = decoded
	}

	assets, err := uploader.UploadAll(ctx, s.uploads, raw)
	if err != nil {
		return nil, models.NewUpstreamError("Image upload failed", err)
	}

	images := make([]models.PostImage, len(assets))
	for i, a := range assets {
		images[i] = models.PostImage{Position: i, AssetID: a.AssetID, URL: a.URL}
	}
	return images, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if len(in.Images) == 0 {
		return nil, models.NewValidationError("At least one image is required")
	}
	if len(in.Images) > maxImagesPerPost {
		return nil, models.NewValidationError("Too many images (max 10)")
	}
	if len(in.Caption) > maxCaptionLen {
		return nil, models.NewValidationError("Caption too long (max 2200 characters)")
	}

	images, err := s.uploadImages(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Caption: strings.TrimSpace(in.Caption),
		UserID:  in.UserID,
		Images:  images,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	likers, err := s.postRepo.GetLikers(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Likers = likers
	return post, nil
}

func (s *PostService) ListFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListFeed(ctx, userID, limit, offset)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// UpdatePost edits caption and optionally replaces the image set. Only the
// author may edit; a non-owner gets an authorization error, not a 404.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if len(in.Caption) > maxCaptionLen {
		return nil, models.NewValidationError("Caption too long (max 2200 characters)")
	}
	if len(in.Images) > maxImagesPerPost {
		return nil, models.NewValidationError("Too many images (max 10)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	if len(in.Images) > 0 {
		images, err := s.uploadImages(ctx, in.Images)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceImages(ctx, in.PostID, images); err != nil {
			return nil, err
		}
	}

	post.Caption = strings.TrimSpace(in.Caption)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*DeletePostResult, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only delete your own posts")
	}

	commentsDeleted, err := s.postRepo.Delete(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	return &DeletePostResult{Post: post, CommentsDeleted: commentsDeleted}, nil
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !created {
		observability.RecordEngagementConflict("like")
		return models.NewConflictError("You already liked this post")
	}
	observability.RecordEngagement("like")
	return nil
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	removed, err := s.postRepo.Unlike(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !removed {
		observability.RecordEngagementConflict("unlike")
		return models.NewConflictError("You have not liked this post")
	}
	observability.RecordEngagement("unlike")
	return nil
}

// SavePost is the one engagement whose duplicate surfaces as DUPLICATE (409)
// rather than CONFLICT (400).
func (s *PostService) SavePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	created, err := s.postRepo.Save(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !created {
		observability.RecordEngagementConflict("save")
		return models.NewDuplicateError("You already saved this post")
	}
	observability.RecordEngagement("save")
	return nil
}

func (s *PostService) UnsavePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	removed, err := s.postRepo.Unsave(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !removed {
		observability.RecordEngagementConflict("unsave")
		return models.NewConflictError("You have not saved this post")
	}
	observability.RecordEngagement("unsave")
	return nil
}

func (s *PostService) GetSavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListSaved(ctx, userID, limit, offset)
}
