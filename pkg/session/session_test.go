package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// TestSessionIsExpired validates token expiration check
func TestSessionIsExpired(t *testing.T) {
	testCases := []struct {
		expiresAt time.Time
		expect    bool
		name      string
	}{
		{time.Now().Add(-1 * time.Hour), true, "past expiration"},
		{time.Now().Add(1 * time.Hour), false, "future expiration"},
		{time.Time{}, false, "no expiry"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{Token: "test_token", ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expect, s.IsExpired())
		})
	}
}

// TestSessionIsValid validates session validity check
func TestSessionIsValid(t *testing.T) {
	testCases := []struct {
		token     string
		userID    string
		expiresAt time.Time
		expect    bool
		name      string
	}{
		{"valid_token", "u1", time.Now().Add(time.Hour), true, "valid session"},
		{"", "u1", time.Now().Add(time.Hour), false, "empty token"},
		{"valid_token", "", time.Now().Add(time.Hour), false, "no user"},
		{"valid_token", "u1", time.Now().Add(-time.Hour), false, "expired token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{Token: tc.token, User: User{ID: tc.userID}, ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expect, s.IsValid())
		})
	}
}

func TestNewReadsClaims(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	s := New(signed(t, "u42", exp), User{Name: "Ada"})

	assert.Equal(t, "u42", s.User.ID)
	assert.Equal(t, "Ada", s.User.Name)
	assert.True(t, exp.Equal(s.ExpiresAt))

	opaque := New("not-a-jwt", User{ID: "u1"})
	assert.True(t, opaque.ExpiresAt.IsZero())
	assert.True(t, opaque.IsValid())
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := FileStore{Path: filepath.Join(t.TempDir(), "nested", "session")}

	s, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &Session{Token: "tok", User: User{ID: "u1", Name: "Ada"}}
	require.NoError(t, fs.Save(want))

	info, err := os.Stat(fs.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.User, got.User)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear(), "clearing twice is fine")
}

func TestManagerLifecycle(t *testing.T) {
	fs := FileStore{Path: filepath.Join(t.TempDir(), "session")}
	m := NewManager(fs)
	require.NoError(t, m.Init())
	assert.Empty(t, m.UserID())
	assert.Empty(t, m.Token())

	tok := signed(t, "u1", time.Now().Add(time.Hour))
	require.NoError(t, m.Login(New(tok, User{Name: "Ada"})))
	assert.Equal(t, "u1", m.UserID())
	assert.Equal(t, "Ada", m.UserName())
	assert.Equal(t, tok, m.Token())

	// a fresh process picks the session up from disk
	again := NewManager(fs)
	require.NoError(t, again.Init())
	assert.Equal(t, "u1", again.UserID())

	require.NoError(t, m.Logout())
	_, ok := m.Current()
	assert.False(t, ok)
	_, err := os.Stat(fs.Path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, m.Login(Session{}))
}

func TestInitDropsExpiredSession(t *testing.T) {
	fs := FileStore{Path: filepath.Join(t.TempDir(), "session")}
	require.NoError(t, fs.Save(&Session{Token: "old", User: User{ID: "u1"}, ExpiresAt: time.Now().Add(-time.Minute)}))

	m := NewManager(fs)
	require.NoError(t, m.Init())
	assert.Empty(t, m.UserID())

	s, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}
