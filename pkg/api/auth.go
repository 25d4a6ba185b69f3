package api

import (
	"context"
	"errors"
	"net/http"
)

// Register creates an account and returns its token
func (a *API) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.authenticate(ctx, "/auth/register", req)
}

// Login exchanges credentials for a token
func (a *API) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.authenticate(ctx, "/auth/login", req)
}

func (a *API) authenticate(ctx context.Context, path string, body interface{}) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.bare(ctx, http.MethodPost, path, body, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("server returned no token")
	}
	return &resp, nil
}

// Me returns the signed-in user
func (a *API) Me(ctx context.Context) (*User, error) {
	var u User
	if _, err := a.call(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the signed-in user's details
func (a *API) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	var u User
	if _, err := a.call(ctx, http.MethodPut, "/auth/updatedetails", req, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
