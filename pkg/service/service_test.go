package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/api/apitest"
	"github.com/zfogg/inkwell/pkg/client"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/session"
	"github.com/zfogg/inkwell/pkg/store"
)

const settle = 2 * time.Second

// ServiceSuite drives the services against the fake server with the real
// engine and executor in between
type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	srv      *apitest.Server
	sessions *session.Manager
	engine   *optimistic.Engine
	svc      *Services
	notices  chan [2]string

	author api.User
	reader api.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.srv = apitest.NewServer(s.T())
	s.sessions = session.NewManager(session.FileStore{Path: filepath.Join(s.T().TempDir(), "session")})
	s.notices = make(chan [2]string, 8)

	a := api.New(client.New(client.Options{BaseURL: s.srv.BaseURL(), Timeout: 5 * time.Second}, s.sessions))
	s.engine = optimistic.New(store.New(), NewExecutor(a), s.sessions,
		optimistic.WithNotifier(Notifier(func(action, msg string) { s.notices <- [2]string{action, msg} })))
	s.svc = New(a, s.engine, s.sessions)

	s.author, _ = s.srv.AddUser(gofakeit.Name(), gofakeit.Email(), "secret1")
	var tok string
	s.reader, tok = s.srv.AddUser(gofakeit.Name(), gofakeit.Email(), "secret2")
	s.Require().NoError(s.sessions.Login(session.New(tok, session.User{ID: s.reader.ID, Name: s.reader.Name})))
}

func (s *ServiceSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), settle)
	defer cancel()
	s.NoError(s.engine.Drain(ctx))
}

func (s *ServiceSuite) await(h *optimistic.Handle) error {
	s.Require().NotNil(h)
	return Await(s.ctx, h, settle)
}

func (s *ServiceSuite) notice() [2]string {
	select {
	case n := <-s.notices:
		return n
	case <-time.After(settle):
		s.FailNow("expected a rollback notice")
		return [2]string{}
	}
}

func (s *ServiceSuite) noNotice() {
	select {
	case n := <-s.notices:
		s.Failf("unexpected notice", "%v", n)
	default:
	}
}

func (s *ServiceSuite) entity(id string) store.Entity {
	e, ok := s.engine.Store().Get(id)
	s.Require().True(ok, "entity %s not cached", id)
	return e
}

func (s *ServiceSuite) TestArticleLikeConfirms() {
	a := s.srv.AddArticle(s.author.ID, "Hello World")

	h, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(selectors.LikeSummary{Count: 1, Liked: true}, selectors.Likes(s.entity(a.ID), s.reader.ID))

	s.Require().NoError(s.await(h))
	s.Equal(optimistic.StateConfirmed, h.State())
	s.Equal(selectors.LikeSummary{Count: 1, Liked: true}, selectors.Likes(s.entity(a.ID), s.reader.ID))

	srvCopy, _ := s.srv.Article(a.ID)
	s.Equal(1, srvCopy.LikesCount)
	s.noNotice()
}

func (s *ServiceSuite) TestLikeBySlug() {
	a := s.srv.AddArticle(s.author.ID, "Slugged Title")

	h, err := s.svc.Articles.Like(s.ctx, "slugged-title")
	s.Require().NoError(err)
	s.Equal(a.ID, h.EntityID())
	s.Require().NoError(s.await(h))
}

func (s *ServiceSuite) TestLikeRollbackShowsServerMessage() {
	a := s.srv.AddArticle(s.author.ID, "Flaky")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)

	release := s.srv.Hold("PUT /articles/:id/like")
	s.srv.Fail("PUT /articles/:id/like", http.StatusInternalServerError, "Like service unavailable")

	h, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(1, s.entity(a.ID).LikesCount)
	s.True(selectors.Syncing(s.engine, a.ID))

	release()
	err = s.await(h)
	var rb *optimistic.RollbackError
	s.Require().ErrorAs(err, &rb)
	s.Equal("Like service unavailable", rb.Message())

	s.Equal(selectors.LikeSummary{Count: 0, Liked: false}, selectors.Likes(s.entity(a.ID), s.reader.ID))
	s.False(selectors.Syncing(s.engine, a.ID))
	s.Equal([2]string{"Like", "Like service unavailable"}, s.notice())
}

func (s *ServiceSuite) TestQueuedTogglesSendInOrder() {
	a := s.srv.AddArticle(s.author.ID, "Queue")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)

	release := s.srv.Hold("PUT /articles/:id/like")
	first, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)
	second, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)

	s.Len(s.engine.Pending(), 2)
	s.Equal(0, s.entity(a.ID).LikesCount)

	release()
	s.Require().NoError(s.await(first))
	s.Require().NoError(s.await(second))

	s.Equal(selectors.LikeSummary{Count: 0, Liked: false}, selectors.Likes(s.entity(a.ID), s.reader.ID))
	srvCopy, _ := s.srv.Article(a.ID)
	s.Equal(0, srvCopy.LikesCount)
}

func (s *ServiceSuite) TestFailedHeadSupersedesQueue() {
	a := s.srv.AddArticle(s.author.ID, "Cascade")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)

	release := s.srv.Hold("PUT /articles/:id/like")
	s.srv.Fail("PUT /articles/:id/like", http.StatusServiceUnavailable, "Try later")
	first, _ := s.svc.Articles.Like(s.ctx, a.ID)
	second, _ := s.svc.Articles.Like(s.ctx, a.ID)
	third, _ := s.svc.Articles.Like(s.ctx, a.ID)
	s.Equal(1, s.entity(a.ID).LikesCount)

	release()
	s.Error(s.await(first))
	s.ErrorIs(s.await(second), optimistic.ErrSuperseded)
	s.ErrorIs(s.await(third), optimistic.ErrSuperseded)

	s.Equal(0, s.entity(a.ID).LikesCount)
	s.Equal([2]string{"Like", "Try later"}, s.notice())
	s.noNotice()

	likeCalls := 0
	for _, c := range s.srv.Calls() {
		if c == "PUT /articles/:id/like" {
			likeCalls++
		}
	}
	s.Equal(1, likeCalls)
}

func (s *ServiceSuite) TestRefreshKeepsPendingLike() {
	a := s.srv.AddArticle(s.author.ID, "Refresh")
	release := s.srv.Hold("PUT /articles/:id/like")

	h, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)

	e, err := s.svc.Hydrator.Article(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(1, e.LikesCount, "refetched data must not hide the pending like")
	s.True(e.Likes.Has(s.reader.ID))

	release()
	s.Require().NoError(s.await(h))
	s.Equal(1, s.entity(a.ID).LikesCount)
}

func (s *ServiceSuite) TestSignedOutIsRejectedBeforeApply() {
	a := s.srv.AddArticle(s.author.ID, "Anon")
	_, err := s.svc.Articles.Show(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.sessions.Logout())

	_, err = s.svc.Articles.Like(s.ctx, a.ID)
	s.ErrorIs(err, optimistic.ErrUnauthenticated)
	s.Equal(0, s.entity(a.ID).LikesCount)
	s.Empty(s.engine.Pending())
}

func (s *ServiceSuite) TestAddCommentReplacesTemporary() {
	a := s.srv.AddArticle(s.author.ID, "Discuss")
	release := s.srv.Hold("POST /articles/:id/comments")

	h, err := s.svc.Comments.Add(s.ctx, ArticleRef(a.ID), "  first!  ")
	s.Require().NoError(err)

	tree := selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.True(tree[0].Pending)
	s.Equal("first!", tree[0].Content)
	s.Equal(h.CommentID(), tree[0].ID)

	_, err = s.svc.Comments.Edit(s.ctx, ArticleRef(a.ID), h.CommentID(), "edited")
	s.ErrorIs(err, optimistic.ErrPendingComment)

	release()
	s.Require().NoError(s.await(h))

	tree = selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.False(tree[0].Pending)
	s.Equal(h.Result().Comment.ID, tree[0].ID)
	s.NotEqual(h.CommentID(), tree[0].ID)
	s.Equal(1, s.entity(a.ID).CommentsCount)
}

func (s *ServiceSuite) TestAddCommentRollbackRemovesTemporary() {
	a := s.srv.AddArticle(s.author.ID, "Closed")
	s.srv.Fail("POST /articles/:id/comments", http.StatusForbidden, "Comments are closed")

	h, err := s.svc.Comments.Add(s.ctx, ArticleRef(a.ID), "hello")
	s.Require().NoError(err)
	s.Error(s.await(h))

	s.Empty(selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID))
	s.Equal(0, s.entity(a.ID).CommentsCount)
	s.Equal([2]string{"Comment", "Comments are closed"}, s.notice())
}

func (s *ServiceSuite) TestReplyAndTombstone() {
	a := s.srv.AddArticle(s.author.ID, "Thread")
	top := s.srv.AddComment(a.ID, s.reader.ID, "top", "")

	reply, err := s.svc.Comments.Reply(s.ctx, ArticleRef(a.ID), top.ID, "a reply")
	s.Require().NoError(err)
	s.Require().NoError(s.await(reply))

	del, err := s.svc.Comments.Delete(s.ctx, ArticleRef(a.ID), top.ID)
	s.Require().NoError(err)

	tree := selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.True(tree[0].Deleted)
	s.Equal(store.DeletedPlaceholder, tree[0].Content)
	s.Require().Len(tree[0].Replies, 1)
	s.Equal("a reply", tree[0].Replies[0].Content)

	s.Require().NoError(s.await(del))
	s.Equal(1, selectors.CountComments(s.entity(a.ID)))

	_, err = s.svc.Comments.Reply(s.ctx, ArticleRef(a.ID), tree[0].Replies[0].ID, "nested")
	s.ErrorIs(err, store.ErrNestedReply)
}

func (s *ServiceSuite) TestDeleteOthersCommentRestoresIt() {
	a := s.srv.AddArticle(s.author.ID, "Guarded")
	theirs := s.srv.AddComment(a.ID, s.author.ID, "mine, not yours", "")

	h, err := s.svc.Comments.Delete(s.ctx, ArticleRef(a.ID), theirs.ID)
	s.Require().NoError(err)
	s.Error(s.await(h))

	tree := selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.False(tree[0].Deleted)
	s.Equal("mine, not yours", tree[0].Content)
	s.Equal("Not authorized to modify this comment", s.notice()[1])
}

func (s *ServiceSuite) TestCommentLike() {
	a := s.srv.AddArticle(s.author.ID, "Likeable")
	c := s.srv.AddComment(a.ID, s.author.ID, "like me", "")

	h, err := s.svc.Comments.Like(s.ctx, ArticleRef(a.ID), c.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))

	tree := selectors.CommentTree(s.engine.Store(), a.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.Equal(1, tree[0].LikesCount)
	s.True(tree[0].Liked)
}

func (s *ServiceSuite) TestBookmarkToggleAndList() {
	a := s.srv.AddArticle(s.author.ID, "Keep")

	h, err := s.svc.Bookmarks.Toggle(s.ctx, a.ID)
	s.Require().NoError(err)
	s.True(s.entity(a.ID).Bookmarked)
	s.Require().NoError(s.await(h))
	s.True(s.srv.Bookmarked(s.reader.ID, a.ID))

	list, page, err := s.svc.Bookmarks.List(s.ctx, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(1, page.Total)

	h, err = s.svc.Bookmarks.Toggle(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(selectors.Bookmarked(s.engine.Store(), ListBookmarks), "unbookmarked articles leave the list at once")
	s.Require().NoError(s.await(h))
	s.False(s.srv.Bookmarked(s.reader.ID, a.ID))
}

func (s *ServiceSuite) TestRemoveBookmark() {
	a := s.srv.AddArticle(s.author.ID, "Drop")
	h, err := s.svc.Bookmarks.Toggle(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))

	e, err := s.svc.Bookmarks.Remove(s.ctx, a.Slug)
	s.Require().NoError(err)
	s.False(e.Bookmarked)
	s.False(s.entity(a.ID).Bookmarked)
	s.False(s.srv.Bookmarked(s.reader.ID, a.ID))

	_, err = s.svc.Bookmarks.Remove(s.ctx, a.ID)
	s.ErrorIs(err, ErrNoChange)
}

func (s *ServiceSuite) TestArticlesByAuthor() {
	first := s.srv.AddArticle(s.author.ID, "First")
	second := s.srv.AddArticle(s.author.ID, "Second")
	s.srv.AddArticle(s.reader.ID, "Not Theirs")

	list, page, err := s.svc.Articles.ByAuthor(s.ctx, s.author.ID, 1, 10)
	s.Require().NoError(err)
	s.Equal(2, page.Total)

	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	s.ElementsMatch([]string{first.ID, second.ID}, ids)
	s.ElementsMatch(ids, s.engine.Store().List(AuthorList(s.author.ID)))
}

func (s *ServiceSuite) TestFollowAndUnfollow() {
	h, err := s.svc.Follows.Follow(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.True(selectors.IsFollowing(s.entity(s.author.ID), s.reader.ID))
	s.Require().NoError(s.await(h))
	s.Equal(1, s.entity(s.author.ID).FollowersCount)

	_, err = s.svc.Follows.Follow(s.ctx, s.author.ID)
	s.ErrorIs(err, ErrNoChange)

	followers, err := s.svc.Follows.Followers(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(followers, 1)
	s.Equal(s.reader.ID, followers[0].ID)

	h, err = s.svc.Follows.Unfollow(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))
	s.Equal(0, s.entity(s.author.ID).FollowersCount)
	s.False(selectors.IsFollowing(s.entity(s.author.ID), s.reader.ID))
}

func (s *ServiceSuite) TestFollowSelfRejected() {
	_, err := s.svc.Follows.Toggle(s.ctx, s.reader.ID)
	s.True(optimistic.IsValidation(err))
	s.Empty(s.engine.Pending())
}

func (s *ServiceSuite) TestFollowRejectedByServer() {
	s.srv.Fail("PUT /users/:id/follow", http.StatusBadRequest, "Already following this user")

	h, err := s.svc.Follows.Follow(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Error(s.await(h))

	s.Equal(0, s.entity(s.author.ID).FollowersCount)
	s.Equal([2]string{"Follow", "Already following this user"}, s.notice())
}

func (s *ServiceSuite) TestDeleteArticleLeavesListsAtOnce() {
	s.srv.AddArticle(s.reader.ID, "One")
	mine := s.srv.AddArticle(s.reader.ID, "Two")
	s.srv.AddArticle(s.reader.ID, "Three")

	list, _, err := s.svc.Articles.List(s.ctx, api.ArticleParams{})
	s.Require().NoError(err)
	s.Require().Len(list, 3)

	h, err := s.svc.Articles.Delete(s.ctx, mine.ID)
	s.Require().NoError(err)
	s.Len(selectors.Feed(s.engine.Store(), ListArticles), 2)

	s.Require().NoError(s.await(h))
	_, onServer := s.srv.Article(mine.ID)
	s.False(onServer)
	s.False(s.engine.Store().Has(mine.ID))
}

func (s *ServiceSuite) TestDeleteOthersArticleRestoresPosition() {
	s.srv.AddArticle(s.author.ID, "One")
	theirs := s.srv.AddArticle(s.author.ID, "Two")
	s.srv.AddArticle(s.author.ID, "Three")

	_, _, err := s.svc.Articles.List(s.ctx, api.ArticleParams{})
	s.Require().NoError(err)
	before := s.engine.Store().List(ListArticles)

	h, err := s.svc.Articles.Delete(s.ctx, theirs.ID)
	s.Require().NoError(err)
	s.Error(s.await(h))

	s.Equal(before, s.engine.Store().List(ListArticles))
	s.Equal("Not authorized to modify this article", s.notice()[1])
}

func (s *ServiceSuite) TestCreateAndUpdateArticle() {
	e, err := s.svc.Articles.Create(s.ctx, api.CreateArticleRequest{
		Title:   "Fresh Ink",
		Content: []byte(`{"blocks":[{"type":"paragraph"}]}`),
		Status:  "published",
	})
	s.Require().NoError(err)
	s.Equal("fresh-ink", e.Slug)
	s.Contains(s.engine.Store().List(ListMine), e.ID)

	updated, err := s.svc.Articles.Update(s.ctx, "fresh-ink", api.UpdateArticleRequest{Title: "Fresher Ink"})
	s.Require().NoError(err)
	s.Equal(e.ID, updated.ID)
	s.Equal("Fresher Ink", s.entity(e.ID).Title)
}

func (s *ServiceSuite) TestPostUpvoteIsOneWay() {
	p := s.srv.AddPost(s.author.ID, "Short", "body")

	h, err := s.svc.Posts.Upvote(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))
	s.Equal(1, s.entity(p.ID).LikesCount)

	_, err = s.svc.Posts.Upvote(s.ctx, p.ID)
	s.True(optimistic.IsValidation(err))

	// the server does not list upvoters; a refresh must keep ours
	e, err := s.svc.Posts.Show(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(selectors.IsLikedBy(e, s.reader.ID))
	s.Equal(1, e.LikesCount)
}

func (s *ServiceSuite) TestPostRefreshDuringFailedUpvote() {
	p := s.srv.AddPost(s.author.ID, "Flaky", "body")
	_, err := s.svc.Posts.Show(s.ctx, p.ID)
	s.Require().NoError(err)

	release := s.srv.Hold("POST /posts/upvote/:id")
	s.srv.Fail("POST /posts/upvote/:id", http.StatusInternalServerError, "Upvotes are down")

	h, err := s.svc.Posts.Upvote(s.ctx, p.ID)
	s.Require().NoError(err)

	e, err := s.svc.Posts.Show(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(selectors.LikeSummary{Count: 1, Liked: true}, selectors.Likes(e, s.reader.ID))

	release()
	var rb *optimistic.RollbackError
	s.Require().ErrorAs(s.await(h), &rb)
	s.Equal([2]string{"Like", "Upvotes are down"}, s.notice())

	after := s.entity(p.ID)
	s.Equal(selectors.LikeSummary{Count: 0, Liked: false}, selectors.Likes(after, s.reader.ID))
	s.Equal(0, after.Likes.Len())
}

func (s *ServiceSuite) TestPostComments() {
	p := s.srv.AddPost(s.author.ID, "Chat", "body")

	h, err := s.svc.Comments.Add(s.ctx, PostRef(p.ID), "nice post")
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))
	s.Require().NotNil(h.Result().Comment)
	cid := h.Result().Comment.ID

	tree := selectors.CommentTree(s.engine.Store(), p.ID, s.reader.ID)
	s.Require().Len(tree, 1)
	s.Equal(cid, tree[0].ID)
	s.False(tree[0].Pending)

	_, err = s.svc.Comments.Reply(s.ctx, PostRef(p.ID), cid, "no threads here")
	s.True(optimistic.IsValidation(err))

	h, err = s.svc.Comments.Edit(s.ctx, PostRef(p.ID), cid, "nicer post")
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))
	s.Equal("nicer post", selectors.CommentTree(s.engine.Store(), p.ID, s.reader.ID)[0].Content)

	h, err = s.svc.Comments.Delete(s.ctx, PostRef(p.ID), cid)
	s.Require().NoError(err)
	s.Require().NoError(s.await(h))
	s.Equal(0, selectors.CountComments(s.entity(p.ID)))
}

func (s *ServiceSuite) TestPostListAndDelete() {
	s.srv.AddPost(s.reader.ID, "A", "a")
	p := s.srv.AddPost(s.reader.ID, "B", "b")

	posts, more, err := s.svc.Posts.List(s.ctx, 1, 10)
	s.Require().NoError(err)
	s.False(more)
	s.Len(posts, 2)

	h, err := s.svc.Posts.Delete(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Len(selectors.Feed(s.engine.Store(), ListPosts), 1)
	s.Require().NoError(s.await(h))
	s.Equal(p.ID, h.Result().DeletedID)
}

func (s *ServiceSuite) TestAwaitTimeoutLeavesMutationInFlight() {
	a := s.srv.AddArticle(s.author.ID, "Slow")
	release := s.srv.Hold("PUT /articles/:id/like")

	h, err := s.svc.Articles.Like(s.ctx, a.ID)
	s.Require().NoError(err)

	err = Await(s.ctx, h, 20*time.Millisecond)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(optimistic.StateApplied, h.State())

	release()
	s.Require().NoError(s.await(h))
}

func (s *ServiceSuite) TestAuthLifecycle() {
	u, _ := s.srv.AddUser("Ada", "ada@example.com", "hunter22")

	sess, err := s.svc.Auth.Login(s.ctx, "ada@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(u.ID, sess.User.ID)
	s.False(sess.ExpiresAt.IsZero())
	s.Equal(u.ID, s.sessions.UserID())

	me, err := s.svc.Auth.WhoAmI(s.ctx)
	s.Require().NoError(err)
	s.Equal("Ada", me.Name)

	s.Require().NoError(s.svc.Auth.Logout())
	s.Empty(s.sessions.Token())
	s.ErrorIs(s.svc.Auth.Logout(), ErrNoChange)

	_, err = s.svc.Auth.WhoAmI(s.ctx)
	s.ErrorIs(err, optimistic.ErrUnauthenticated)
}

func (s *ServiceSuite) TestUpdateProfileRefreshesSession() {
	tok := s.sessions.Token()

	u, err := s.svc.Auth.UpdateProfile(s.ctx, api.UpdateProfileRequest{Name: "Renamed Reader", Bio: "writes at night"})
	s.Require().NoError(err)
	s.Equal("Renamed Reader", u.Name)
	s.Equal("writes at night", u.Bio)

	s.Equal("Renamed Reader", s.sessions.UserName())
	s.Equal(tok, s.sessions.Token())

	s.Require().NoError(s.svc.Auth.Logout())
	_, err = s.svc.Auth.UpdateProfile(s.ctx, api.UpdateProfileRequest{Name: "Nobody"})
	s.ErrorIs(err, optimistic.ErrUnauthenticated)
}

func (s *ServiceSuite) TestLoginFailureKeepsSession() {
	_, err := s.svc.Auth.Login(s.ctx, s.reader.Email, "wrong")
	var apiErr *api.APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal("Invalid credentials", apiErr.ServerMessage())
	s.Equal(s.reader.ID, s.sessions.UserID())
}

func (s *ServiceSuite) TestRegisterSignsIn() {
	sess, err := s.svc.Auth.Register(s.ctx, "Grace", gofakeit.Email(), "secret99")
	s.Require().NoError(err)
	s.Equal("Grace", sess.User.Name)
	s.Equal(sess.User.ID, s.sessions.UserID())
}
