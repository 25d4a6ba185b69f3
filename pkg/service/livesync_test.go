package service

import (
	"net/http"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/metrics"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/websocket"
)

type fakeFeed struct {
	mu   sync.Mutex
	subs map[websocket.MessageType][]func(websocket.Message)
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: map[websocket.MessageType][]func(websocket.Message){}}
}

func (f *fakeFeed) On(t websocket.MessageType, cb func(websocket.Message)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[t] = append(f.subs[t], cb)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, t)
	}
}

func (f *fakeFeed) push(t websocket.MessageType, payload interface{}) {
	raw, _ := json.Marshal(payload)
	f.mu.Lock()
	subs := append([]func(websocket.Message){}, f.subs[t]...)
	f.mu.Unlock()
	for _, cb := range subs {
		cb(websocket.Message{Type: t, Payload: raw})
	}
}

func (s *ServiceSuite) live() (*fakeFeed, *metrics.Metrics, func()) {
	feed := newFakeFeed()
	m := metrics.New()
	off := NewLiveSync(s.engine, m).Attach(feed)
	return feed, m, off
}

func (s *ServiceSuite) TestLiveLikeForUncachedEntityIgnored() {
	feed, m, off := s.live()
	defer off()

	feed.push(websocket.MessageTypeLikeCountUpdate, websocket.LikeCountUpdate{EntityID: "a404", UserID: "u9", Liked: true, LikesCount: 3})

	s.False(s.engine.Store().Has("a404"))
	s.Equal(1.0, testutil.ToFloat64(m.LiveEvents.WithLabelValues(string(websocket.MessageTypeLikeCountUpdate))))
}

func (s *ServiceSuite) TestLiveLikeSurvivesRollback() {
	a := s.srv.AddArticle(s.author.ID, "Popular")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)
	feed, _, off := s.live()
	defer off()

	release := s.srv.Hold("PUT /articles/:id/like")
	s.srv.Fail("PUT /articles/:id/like", http.StatusInternalServerError, "nope")
	h, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)

	feed.push(websocket.MessageTypeLikeCountUpdate, websocket.LikeCountUpdate{EntityID: a.ID, UserID: "u77", Liked: true, LikesCount: 1})
	s.Equal(2, s.entity(a.ID).LikesCount)

	release()
	s.Error(s.await(h))

	e := s.entity(a.ID)
	s.Equal(1, e.LikesCount)
	s.True(e.Likes.Has("u77"))
	s.False(selectors.IsLikedBy(e, s.reader.ID))
	s.notice()
}

func (s *ServiceSuite) TestLiveCommentDeduplicated() {
	a := s.srv.AddArticle(s.author.ID, "Chatty")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)
	feed, _, off := s.live()
	defer off()

	now := time.Now().UTC()
	c := api.Comment{ID: "c900", Content: "from afar", Author: api.Author{ID: s.author.ID, Name: s.author.Name}, CreatedAt: now, UpdatedAt: now}
	feed.push(websocket.MessageTypeCommentAdded, websocket.CommentAdded{ArticleID: a.ID, Comment: c})
	feed.push(websocket.MessageTypeCommentAdded, websocket.CommentAdded{ArticleID: a.ID, Comment: c})

	tree := selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.Equal("from afar", tree[0].Content)
	s.Equal(1, s.entity(a.ID).CommentsCount)
}

func (s *ServiceSuite) TestLiveEchoOfOwnComment() {
	a := s.srv.AddArticle(s.author.ID, "Echo")
	feed, _, off := s.live()
	defer off()

	h, err := s.svc.Comments.Add(s.ctx, ArticleRef(a.ID), "hello there")
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))

	feed.push(websocket.MessageTypeCommentAdded, websocket.CommentAdded{ArticleID: a.ID, Comment: api.Comment{ID: h.Result().Comment.ID, Content: "hello there"}})
	s.Len(selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID), 1)
	s.Equal(1, s.entity(a.ID).CommentsCount)
}

func (s *ServiceSuite) TestLiveFollowerAndBookmark() {
	a := s.srv.AddArticle(s.author.ID, "Saved elsewhere")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)
	_, err = s.svc.Hydrator.User(s.ctx, s.author.ID)
	s.Require().NoError(err)
	feed, _, off := s.live()

	feed.push(websocket.MessageTypeFollowerCountUpdate, websocket.FollowerCountUpdate{UserID: s.author.ID, FollowerID: "u55", Following: true, FollowersCount: 1})
	feed.push(websocket.MessageTypeBookmarkUpdate, websocket.BookmarkUpdate{ArticleID: a.ID, IsBookmarked: true})

	s.True(selectors.IsFollowing(s.entity(s.author.ID), "u55"))
	s.Equal(1, s.entity(s.author.ID).FollowersCount)
	s.True(s.entity(a.ID).Bookmarked)

	off()
	feed.push(websocket.MessageTypeBookmarkUpdate, websocket.BookmarkUpdate{ArticleID: a.ID, IsBookmarked: false})
	s.True(s.entity(a.ID).Bookmarked, "detached feeds no longer apply")
}

func (s *ServiceSuite) TestLiveBadPayloadDropped() {
	a := s.srv.AddArticle(s.author.ID, "Garbled")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)
	feed, m, off := s.live()
	defer off()

	feed.push(websocket.MessageTypeLikeCountUpdate, "not an object")

	s.Equal(0, s.entity(a.ID).LikesCount)
	s.Equal(1.0, testutil.ToFloat64(m.LiveEvents.WithLabelValues(string(websocket.MessageTypeLikeCountUpdate))))
}

func (s *ServiceSuite) TestNotifierDescribesKind() {
	var got [2]string
	notify := Notifier(func(action, msg string) { got = [2]string{action, msg} })
	notify(&optimistic.RollbackError{Kind: optimistic.KindToggleBookmark, Cause: &api.APIError{StatusCode: 500, Message: "Bookmarks are down"}})
	s.Equal([2]string{"Bookmark", "Bookmarks are down"}, got)
}
