package server

import (
	"mosaic/internal/models"
	"mosaic/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUser(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")

	users, err := s.userService.SearchUsers(ctx, q)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Avatar    string `json:"avatar"`
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Mobile    string `json:"mobile"`
		Story     string `json:"story"`
		Gender    string `json:"gender"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:    userID,
		Avatar:    req.Avatar,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
		Story:     req.Story,
		Gender:    req.Gender,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.userService.Follow(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.GetUser(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User followed",
		"user":    user,
	})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.userService.Unfollow(ctx, userID, id); err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.GetUser(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User unfollowed",
		"user":    user,
	})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followers, err := s.userService.GetFollowers(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(followers)
}

// GetFollowings handles GET /api/users/:id/followings
func (s *Server) GetFollowings(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followings, err := s.userService.GetFollowings(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(followings)
}
