package service

import (
	"context"
	"strings"

	"mosaic/internal/models"
	"mosaic/internal/observability"
	"mosaic/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

const maxCommentLen = 2200

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2200 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:     content,
		PostID:      in.PostID,
		PostOwnerID: post.UserID,
		UserID:      in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset, currentUserID)
}

// UpdateComment edits content. Only the author may edit; the post owner has
// no edit rights over other people's comments.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2200 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own comments")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID, in.UserID)
}

// DeleteComment removes the comment when the requester is the author or the
// owner of the post the comment sits on.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, 0)
	if err != nil {
		return err
	}
	if comment.UserID != in.UserID && comment.PostOwnerID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own comments or comments on your posts")
	}
	return s.commentRepo.Delete(ctx, in.CommentID)
}

func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.commentRepo.GetByID(ctx, commentID, 0); err != nil {
		return err
	}
	created, err := s.commentRepo.Like(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if !created {
		observability.RecordEngagementConflict("comment_like")
		return models.NewConflictError("You already liked this comment")
	}
	observability.RecordEngagement("comment_like")
	return nil
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.commentRepo.GetByID(ctx, commentID, 0); err != nil {
		return err
	}
	removed, err := s.commentRepo.Unlike(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if !removed {
		observability.RecordEngagementConflict("comment_unlike")
		return models.NewConflictError("You have not liked this comment")
	}
	observability.RecordEngagement("comment_unlike")
	return nil
}

func (s *CommentService) GetComment(ctx context.Context, commentID, currentUserID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID, currentUserID)
	if err != nil {
		return nil, err
	}
	likers, err := s.commentRepo.GetLikers(ctx, commentID)
	if err != nil {
		return nil, err
	}
	comment.Likers = likers
	return comment, nil
}
