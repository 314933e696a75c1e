package service

import (
	"context"
	"strings"

	"mosaic/internal/models"
	"mosaic/internal/observability"
	"mosaic/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID    uint
	Avatar    string
	FirstName string
	LastName  string
	Mobile    string
	Story     string
	Gender    string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

const searchLimit = 10

// GetUser returns the profile densified with follower and following summaries.
func (s *UserService) GetUser(ctx context.Context, userID, currentUserID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID, currentUserID)
	if err != nil {
		return nil, err
	}
	followers, err := s.userRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	followings, err := s.userRepo.GetFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Followers = followers
	user.Followings = followings
	return user, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, strings.TrimSpace(query), searchLimit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, models.NewValidationError("First name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, models.NewValidationError("Last name is required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID, 0)
	if err != nil {
		return nil, err
	}

	user.Avatar = in.Avatar
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Mobile = in.Mobile
	user.Story = in.Story
	user.Gender = in.Gender

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID, in.UserID)
}

// Follow creates the single graph edge. The same row backs both the
// follower's followings list and the followee's followers list, so the two
// views can never disagree.
func (s *UserService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}
	exists, err := s.userRepo.Exists(ctx, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", followeeID)
	}

	created, err := s.userRepo.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !created {
		observability.RecordEngagementConflict("follow")
		return models.NewConflictError("You already follow this user")
	}
	observability.RecordEngagement("follow")
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	exists, err := s.userRepo.Exists(ctx, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", followeeID)
	}

	removed, err := s.userRepo.Unfollow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !removed {
		observability.RecordEngagementConflict("unfollow")
		return models.NewConflictError("You are not following this user")
	}
	observability.RecordEngagement("unfollow")
	return nil
}

func (s *UserService) GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}
	return s.userRepo.GetFollowers(ctx, userID)
}

func (s *UserService) GetFollowings(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}
	return s.userRepo.GetFollowings(ctx, userID)
}
