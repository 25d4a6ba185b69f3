package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	json "github.com/json-iterator/go"
)

// User is the signed-in account
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the persisted token and user. It is replaced as a whole,
// never edited field by field.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New builds a session, reading the expiry from the token's exp claim.
// The signature is not checked; the server does that.
func New(token string, user User) Session {
	s := Session{Token: token, User: user}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Time
		}
		if s.User.ID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				s.User.ID = sub
			}
		}
	}
	return s
}

// IsExpired checks if the token is expired. Tokens without an expiry never are.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// IsValid checks if the session can authenticate requests
func (s *Session) IsValid() bool {
	return s.Token != "" && s.User.ID != "" && !s.IsExpired()
}

// Store persists a session between runs
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a 0600 file
type FileStore struct {
	Path string
}

// Load loads the session from disk. A missing file is not an error.
func (f FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the session with owner-only permissions
func (f FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Clear deletes the session file
func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Manager owns the current session. It is loaded once at startup and only
// changed by Login and Logout.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current *Session
}

// NewManager creates a manager backed by st
func NewManager(st Store) *Manager {
	return &Manager{store: st}
}

// Init loads the persisted session. Expired sessions are discarded.
func (m *Manager) Init() error {
	s, err := m.store.Load()
	if err != nil {
		return err
	}
	if s != nil && !s.IsValid() {
		_ = m.store.Clear()
		s = nil
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Login persists s and makes it current
func (m *Manager) Login(s Session) error {
	if s.Token == "" {
		return errors.New("session has no token")
	}
	if err := m.store.Save(&s); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return nil
}

// Logout forgets the session in memory and on disk
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return m.store.Clear()
}

// Current returns a copy of the session
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// UserID is the viewer id, empty when signed out
func (m *Manager) UserID() string {
	s, ok := m.Current()
	if !ok || s.IsExpired() {
		return ""
	}
	return s.User.ID
}

// UserName is the viewer's display name
func (m *Manager) UserName() string {
	s, _ := m.Current()
	return s.User.Name
}

// Token returns the bearer token, empty when signed out or expired
func (m *Manager) Token() string {
	s, ok := m.Current()
	if !ok || s.IsExpired() {
		return ""
	}
	return s.Token
}
