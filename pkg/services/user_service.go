package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
)

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
	Bio      *string
}

// UserService handles profiles and follow edges.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfileUpdate, actorID uuid.UUID) (*models.User, error)
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	Followers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
	Following(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
}

// userService implements UserService.
type userService struct {
	userRepo   repositories.UserRepository
	followRepo repositories.FollowRepository
	notifier   Notifier
	logger     *zap.Logger
}

// NewUserService creates a new user service with dependencies.
func NewUserService(
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	notifier Notifier,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// GetProfile retrieves a user's public profile.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a patch to the user's own profile.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfileUpdate, actorID uuid.UUID) (*models.User, error) {
	if userID != actorID {
		return nil, apperrors.Forbidden("can only update your own profile")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow adds a follow edge. Self-follows are rejected; duplicates
// surface as ErrConflict from the unique pair constraint.
func (s *userService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return apperrors.Invalid("cannot follow yourself")
	}

	if err := s.followRepo.Add(ctx, followerID, followingID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: already following this user", apperrors.ErrConflict)
		}
		return err
	}

	s.notifier.NotifyUser(followingID, "user.followed", map[string]string{"follower_id": followerID.String()})
	return nil
}

// Unfollow removes a follow edge.
func (s *userService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	return s.followRepo.Remove(ctx, followerID, followingID)
}

// Followers lists edges pointing at the user.
func (s *userService) Followers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	return s.followRepo.ListFollowers(ctx, userID)
}

// Following lists edges originating from the user.
func (s *userService) Following(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	return s.followRepo.ListFollowing(ctx, userID)
}

// Ensure userService implements UserService at compile time.
var _ UserService = (*userService)(nil)
