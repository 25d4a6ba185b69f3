package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/session"
)

// AuthService is the only writer of the session
type AuthService struct {
	api      *api.API
	sessions *session.Manager
}

// NewAuthService creates an auth service
func NewAuthService(a *api.API, sessions *session.Manager) *AuthService {
	return &AuthService{api: a, sessions: sessions}
}

// Login authenticates and persists the session
func (s *AuthService) Login(ctx context.Context, email, password string) (session.Session, error) {
	resp, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return session.Session{}, err
	}
	return s.start(resp)
}

// Register creates an account and signs in with it
func (s *AuthService) Register(ctx context.Context, name, email, password string) (session.Session, error) {
	resp, err := s.api.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return session.Session{}, err
	}
	return s.start(resp)
}

func (s *AuthService) start(resp *api.AuthResponse) (session.Session, error) {
	sess := session.New(resp.Token, session.User{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
		Role:  resp.User.Role,
	})
	if err := s.sessions.Login(sess); err != nil {
		return session.Session{}, err
	}
	logger.Info("Signed in", "user_id", sess.User.ID)
	return sess, nil
}

// Logout forgets the session
func (s *AuthService) Logout() error {
	if _, ok := s.sessions.Current(); !ok {
		return ErrNoChange
	}
	return s.sessions.Logout()
}

// UpdateProfile changes the signed-in user's details. The session keeps
// its token and picks up the new name and email.
func (s *AuthService) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.User, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return nil, optimistic.ErrUnauthenticated
	}
	u, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.User.Name = u.Name
	if u.Email != "" {
		sess.User.Email = u.Email
	}
	if err := s.sessions.Login(sess); err != nil {
		return u, err
	}
	logger.Info("Profile updated", "user_id", u.ID)
	return u, nil
}

// WhoAmI asks the server who the token belongs to. A rejected token ends
// the local session.
func (s *AuthService) WhoAmI(ctx context.Context) (*api.User, error) {
	if s.sessions.Token() == "" {
		return nil, optimistic.ErrUnauthenticated
	}
	u, err := s.api.Me(ctx)
	if api.IsUnauthorized(err) {
		_ = s.sessions.Logout()
	}
	return u, err
}
