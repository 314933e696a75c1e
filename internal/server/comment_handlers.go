package server

import (
	"mosaic/internal/models"
	"mosaic/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:  userID,
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment created",
		"comment": comment,
	})
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 50)

	comments, err := s.commentService.ListComments(ctx, postID, page.Limit, page.Offset, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	comment, err := s.commentService.GetComment(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    userID,
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment updated",
		"comment": comment,
	})
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		CommentID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.commentService.LikeComment(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentService.GetComment(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment liked",
		"comment": comment,
	})
}

// UnlikeComment handles DELETE /api/comments/:id/like
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.commentService.UnlikeComment(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentService.GetComment(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment unliked",
		"comment": comment,
	})
}
