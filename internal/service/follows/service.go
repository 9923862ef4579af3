package follows

import (
	"context"
	"errors"
	"fmt"

	"github.com/monster-anshu/api-social-media/internal/store"
)

// Common errors for follow operations.
var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrUserNotFound     = errors.New("user not found")
)

// DefaultPageSize is the follower/following page size.
const DefaultPageSize = 5

// Service provides follow management business logic.
type Service struct {
	store store.Store
}

// New creates a new follow service.
func New(st store.Store) *Service {
	return &Service{
		store: st,
	}
}

// Follow records followerID following followeeID.
func (s *Service) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return ErrCannotFollowSelf
	}

	if _, err := s.store.GetUserByID(ctx, followeeID); err != nil {
		return ErrUserNotFound
	}

	following, err := s.store.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("check following: %w", err)
	}
	if following {
		return ErrAlreadyFollowing
	}

	if err := s.store.Follow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Unfollow removes the relationship.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return ErrCannotFollowSelf
	}

	following, err := s.store.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("check following: %w", err)
	}
	if !following {
		return ErrNotFollowing
	}

	if err := s.store.Unfollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

// Followers lists users following userID, one page at a time.
func (s *Service) Followers(ctx context.Context, userID int64, page int) ([]*store.User, error) {
	if page < 1 {
		page = 1
	}
	users, err := s.store.ListFollowers(ctx, userID, page, DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// Following lists users userID follows, one page at a time.
func (s *Service) Following(ctx context.Context, userID int64, page int) ([]*store.User, error) {
	if page < 1 {
		page = 1
	}
	users, err := s.store.ListFollowing(ctx, userID, page, DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}
