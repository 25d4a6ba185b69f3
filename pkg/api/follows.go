package api

import (
	"context"
	"net/http"
)

// Follow makes the viewer follow userID
func (a *API) Follow(ctx context.Context, userID string) (*FollowCounts, error) {
	return a.followCounts(ctx, "/users/"+escape(userID)+"/follow")
}

// Unfollow stops the viewer following userID
func (a *API) Unfollow(ctx context.Context, userID string) (*FollowCounts, error) {
	return a.followCounts(ctx, "/users/"+escape(userID)+"/unfollow")
}

func (a *API) followCounts(ctx context.Context, path string) (*FollowCounts, error) {
	var counts FollowCounts
	if _, err := a.call(ctx, http.MethodPut, path, nil, nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// Followers lists who follows userID
func (a *API) Followers(ctx context.Context, userID string) ([]FollowUser, error) {
	return a.followList(ctx, "/users/"+escape(userID)+"/followers")
}

// Following lists whom userID follows
func (a *API) Following(ctx context.Context, userID string) ([]FollowUser, error) {
	return a.followList(ctx, "/users/"+escape(userID)+"/following")
}

func (a *API) followList(ctx context.Context, path string) ([]FollowUser, error) {
	var users []FollowUser
	if _, err := a.call(ctx, http.MethodGet, path, nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// IsFollowing reports whether the viewer follows userID
func (a *API) IsFollowing(ctx context.Context, userID string) (bool, error) {
	var st struct {
		IsFollowing bool `json:"isFollowing"`
	}
	if _, err := a.call(ctx, http.MethodGet, "/users/"+escape(userID)+"/is-following", nil, nil, &st); err != nil {
		return false, err
	}
	return st.IsFollowing, nil
}

// GetUser fetches a public profile
func (a *API) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	if _, err := a.call(ctx, http.MethodGet, "/users/"+escape(userID), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
