package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/api/apitest"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/output"
	"github.com/zfogg/inkwell/pkg/session"
	"github.com/zfogg/inkwell/pkg/store"
)

type harness struct {
	t      *testing.T
	srv    *apitest.Server
	cfg    string
	author api.User
	reader api.User
}

func newHarness(t *testing.T) *harness {
	color.NoColor = true
	dir := t.TempDir()
	srv := apitest.NewServer(t)

	cfg := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[api]\nbase_url = %q\ntimeout = 5\n\n[log]\nfile = %q\n\n[engine]\nwait_timeout = \"5s\"\n",
		srv.BaseURL(), filepath.Join(dir, "inkwell.log"))
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0600))

	author, _ := srv.AddUser("Author", "author@example.com", "secret1")
	reader, tok := srv.AddUser("Reader", "reader@example.com", "secret2")
	sess := session.New(tok, session.User{ID: reader.ID, Name: reader.Name})
	require.NoError(t, session.FileStore{Path: filepath.Join(dir, "session")}.Save(&sess))

	return &harness{t: t, srv: srv, cfg: cfg, author: author, reader: reader}
}

func (h *harness) run(args ...string) (string, error) {
	var buf bytes.Buffer
	output.SetOutput(&buf)
	rootCmd.SetOut(&buf)
	h.t.Cleanup(func() {
		output.SetOutput(nil)
		rootCmd.SetOut(nil)
	})

	rootCmd.SetArgs(append(args, "--config", h.cfg, "--output", "text"))
	err := rootCmd.ExecuteContext(context.Background())
	if app != nil {
		app.Close(context.Background())
		app = nil
	}
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, "Inkwell CLI v"+Version+"\n", out)
}

func TestArticleLike(t *testing.T) {
	h := newHarness(t)
	a := h.srv.AddArticle(h.author.ID, "Hello World")

	out, err := h.run("article", "like", "hello-world")
	require.NoError(t, err)
	assert.Contains(t, out, "Liked Hello World (1 like)")

	srvCopy, _ := h.srv.Article(a.ID)
	assert.Equal(t, 1, srvCopy.LikesCount)
}

func TestArticleLikeRolledBack(t *testing.T) {
	h := newHarness(t)
	h.srv.AddArticle(h.author.ID, "Flaky")
	h.srv.Fail("PUT /articles/:id/like", http.StatusInternalServerError, "Like service unavailable")

	out, err := h.run("article", "like", "flaky")

	var rb *optimistic.RollbackError
	require.True(t, errors.As(err, &rb))
	assert.Contains(t, out, "Liked Flaky (1 like)")
	assert.Contains(t, out, "Warning: Like was undone: Like service unavailable")
}

func TestFollowTwice(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("follow", "user", h.author.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Following Author (1 follower)")

	out, err = h.run("follow", "user", h.author.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Already following Author")
}

func TestCommentAddAndList(t *testing.T) {
	h := newHarness(t)
	a := h.srv.AddArticle(h.author.ID, "Thread")

	_, err := h.run("comment", "add", a.ID, "first thoughts")
	require.NoError(t, err)

	out, err := h.run("comment", "list", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Reader")
	assert.Contains(t, out, "  first thoughts")
}

func TestStateDump(t *testing.T) {
	h := newHarness(t)
	a := h.srv.AddArticle(h.author.ID, "Dump Me")

	out, err := h.run("state", "--article", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"viewer": "`+h.reader.ID+`"`)
	assert.Contains(t, out, `"title": "Dump Me"`)
	assert.Contains(t, out, `"pending": []`)
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t)
	rootCmd.SetArgs([]string{"version", "--config", h.cfg, "--output", "xml"})
	err := rootCmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigSetAndGet(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("config", "set", "api.user_agent", "inkwell-test")
	require.NoError(t, err)

	out, err := h.run("config", "get", "api.user_agent")
	require.NoError(t, err)
	assert.Equal(t, "inkwell-test\n", out)

	data, err := os.ReadFile(h.cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inkwell-test")
	assert.Contains(t, string(data), h.srv.BaseURL(), "existing settings are kept")
}

func TestBookmarkRemove(t *testing.T) {
	h := newHarness(t)
	a := h.srv.AddArticle(h.author.ID, "Saved")

	_, err := h.run("bookmark", "toggle", a.ID)
	require.NoError(t, err)

	out, err := h.run("bookmark", "remove", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Saved from bookmarks")
	assert.False(t, h.srv.Bookmarked(h.reader.ID, a.ID))

	out, err = h.run("bookmark", "remove", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Not bookmarked")
}

func TestArticlesByAuthor(t *testing.T) {
	h := newHarness(t)
	h.srv.AddArticle(h.author.ID, "Field Notes")
	h.srv.AddArticle(h.reader.ID, "Elsewhere")

	out, err := h.run("article", "by", h.author.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Field Notes")
	assert.NotContains(t, out, "Elsewhere")
}

func TestAuthProfile(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("auth", "profile", "--name", "Reader Two")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile updated for Reader Two")

	out, err = h.run("auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Reader Two")
}

func TestAnnounceMutation(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	output.SetOutput(&buf)
	st := store.New()
	st.Upsert(store.Entity{ID: "a1", Kind: store.KindArticle, Title: "Field Notes"})
	app = &App{Engine: optimistic.New(st, nil, nil)}
	t.Cleanup(func() {
		output.SetOutput(nil)
		app = nil
	})

	announceMutation(optimistic.Event{Type: optimistic.EventApplied, Kind: optimistic.KindToggleLike, EntityID: "a1"})
	announceMutation(optimistic.Event{Type: optimistic.EventConfirmed, Kind: optimistic.KindToggleLike, EntityID: "a1"})
	announceMutation(optimistic.Event{Type: optimistic.EventDiscarded, Kind: optimistic.KindAddComment, EntityID: "gone"})
	announceMutation(optimistic.Event{Type: optimistic.EventRolledBack, Kind: optimistic.KindToggleLike, EntityID: "a1"})

	out := buf.String()
	assert.Contains(t, out, "Field Notes: Like sent")
	assert.Contains(t, out, "Field Notes: Like saved")
	assert.Contains(t, out, "gone: Comment dropped")
	assert.NotContains(t, out, "undone", "rollbacks are left to the notifier")
}
