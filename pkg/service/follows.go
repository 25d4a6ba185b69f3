package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
)

// FollowService manages follow relationships
type FollowService struct {
	api    *api.API
	engine *optimistic.Engine
	hyd    *Hydrator
}

// NewFollowService creates a follow service
func NewFollowService(a *api.API, eng *optimistic.Engine, h *Hydrator) *FollowService {
	return &FollowService{api: a, engine: eng, hyd: h}
}

// Toggle follows or unfollows userID
func (s *FollowService) Toggle(ctx context.Context, userID string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, UserRef(userID), optimistic.Intent{Kind: optimistic.KindToggleFollow})
}

// Follow follows userID. ErrNoChange when already following.
func (s *FollowService) Follow(ctx context.Context, userID string) (*optimistic.Handle, error) {
	return s.set(ctx, userID, true)
}

// Unfollow stops following userID. ErrNoChange when not following.
func (s *FollowService) Unfollow(ctx context.Context, userID string) (*optimistic.Handle, error) {
	return s.set(ctx, userID, false)
}

func (s *FollowService) set(ctx context.Context, userID string, follow bool) (*optimistic.Handle, error) {
	u, err := s.hyd.Ensure(ctx, UserRef(userID))
	if err != nil {
		return nil, err
	}
	if selectors.IsFollowing(u, s.hyd.viewerID()) == follow {
		return nil, ErrNoChange
	}
	return s.engine.Submit(optimistic.Intent{Kind: optimistic.KindToggleFollow, EntityID: u.ID})
}

// Followers lists who follows userID
func (s *FollowService) Followers(ctx context.Context, userID string) ([]api.FollowUser, error) {
	return s.api.Followers(ctx, userID)
}

// Following lists whom userID follows
func (s *FollowService) Following(ctx context.Context, userID string) ([]api.FollowUser, error) {
	return s.api.Following(ctx, userID)
}
