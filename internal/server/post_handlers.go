package server

import (
	"mosaic/internal/models"
	"mosaic/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Caption string   `json:"caption"`
		Images  []string `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:  userID,
		Caption: req.Caption,
		Images:  req.Images,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created",
		"post":    post,
	})
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postService.ListFeed(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(ctx, id, page.Limit, page.Offset, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Caption string   `json:"caption"`
		Images  []string `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Caption: req.Caption,
		Images:  req.Images,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	result, err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: userID,
		PostID: id,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":          "Post deleted",
		"post":             result.Post,
		"comments_deleted": result.CommentsDeleted,
	})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.LikePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post liked",
		"post":    post,
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.UnlikePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post unliked",
		"post":    post,
	})
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.SavePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	saved, err := s.postService.GetSavedPosts(ctx, userID, maxPaginationLimit, 0)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post saved",
		"post":    post,
		"saved":   saved,
	})
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.UnsavePost(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	saved, err := s.postService.GetSavedPosts(ctx, userID, maxPaginationLimit, 0)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post unsaved",
		"saved":   saved,
	})
}

// GetSavedPosts handles GET /api/users/me/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postService.GetSavedPosts(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}
