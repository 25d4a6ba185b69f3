package service

import (
	"context"
	"fmt"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Named store lists filled by the hydrator
const (
	ListArticles  = "articles"
	ListFeatured  = "featured"
	ListMine      = "mine"
	ListBookmarks = "bookmarks"
	ListPosts     = "posts"
)

// AuthorList names the store list of one author's articles
func AuthorList(authorID string) string { return "author:" + authorID }

// Ref names an entity on the server. For articles ID may also be a slug.
type Ref struct {
	Kind store.Kind
	ID   string
}

func ArticleRef(id string) Ref { return Ref{Kind: store.KindArticle, ID: id} }
func PostRef(id string) Ref    { return Ref{Kind: store.KindPost, ID: id} }
func UserRef(id string) Ref    { return Ref{Kind: store.KindUser, ID: id} }

// fetched records which parts of an entity a fetch actually covered. Parts
// not covered keep their cached values.
type fetched struct {
	comments  bool
	bookmark  bool
	followers bool
}

// Hydrator loads server state into the engine's store
type Hydrator struct {
	api    *api.API
	engine *optimistic.Engine
	viewer optimistic.Viewer
}

// NewHydrator creates a hydrator
func NewHydrator(a *api.API, eng *optimistic.Engine, v optimistic.Viewer) *Hydrator {
	return &Hydrator{api: a, engine: eng, viewer: v}
}

// Ensure returns the cached entity, loading it first when it is not cached
func (h *Hydrator) Ensure(ctx context.Context, ref Ref) (store.Entity, error) {
	if e, ok := h.engine.Store().Get(ref.ID); ok && e.Kind == ref.Kind {
		return e, nil
	}
	return h.Load(ctx, ref)
}

// Load fetches the entity and everything shown with it
func (h *Hydrator) Load(ctx context.Context, ref Ref) (store.Entity, error) {
	switch ref.Kind {
	case store.KindArticle:
		return h.Article(ctx, ref.ID)
	case store.KindPost:
		return h.Post(ctx, ref.ID)
	case store.KindUser:
		return h.User(ctx, ref.ID)
	}
	return store.Entity{}, fmt.Errorf("unknown entity kind %q", ref.Kind)
}

// Article fetches an article by id or slug along with its comments and the
// viewer's bookmark flag
func (h *Hydrator) Article(ctx context.Context, idOrSlug string) (store.Entity, error) {
	a, err := h.api.GetArticleByID(ctx, idOrSlug)
	if api.IsNotFound(err) {
		a, err = h.api.GetArticle(ctx, idOrSlug)
	}
	if err != nil {
		return store.Entity{}, err
	}

	var (
		comments []api.Comment
		marked   *api.BookmarkState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = h.api.ListComments(gctx, a.ID)
		return err
	})
	if h.signedIn() {
		g.Go(func() error {
			var err error
			marked, err = h.api.IsBookmarked(gctx, a.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return store.Entity{}, err
	}

	e := ArticleEntity(*a)
	for _, c := range comments {
		e.Comments = append(e.Comments, CommentFromAPI(a.ID, c))
	}
	f := fetched{comments: true}
	if marked != nil {
		e.Bookmarked = marked.IsBookmarked
		f.bookmark = true
	}
	return h.ingest(e, f), nil
}

// Post fetches a post with its comments
func (h *Hydrator) Post(ctx context.Context, id string) (store.Entity, error) {
	p, err := h.api.GetPost(ctx, id)
	if err != nil {
		return store.Entity{}, err
	}
	return h.ingest(PostEntity(*p), fetched{comments: true}), nil
}

// User fetches a profile and its followers
func (h *Hydrator) User(ctx context.Context, id string) (store.Entity, error) {
	var (
		u         *api.User
		followers []api.FollowUser
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		u, err = h.api.GetUser(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		followers, err = h.api.Followers(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return store.Entity{}, err
	}
	return h.ingest(UserEntity(*u, followers), fetched{followers: true}), nil
}

// Articles fetches one page of the article listing into ListArticles
func (h *Hydrator) Articles(ctx context.Context, p api.ArticleParams) (api.Page, error) {
	list, err := h.api.ListArticles(ctx, p)
	if err != nil {
		return api.Page{}, err
	}
	h.ingestArticles(ListArticles, list, p.Page, fetched{})
	return list.Page, nil
}

// Featured fetches the featured articles into ListFeatured
func (h *Hydrator) Featured(ctx context.Context) error {
	list, err := h.api.FeaturedArticles(ctx)
	if err != nil {
		return err
	}
	h.ingestArticles(ListFeatured, list, 1, fetched{})
	return nil
}

// Mine fetches the viewer's own articles into ListMine
func (h *Hydrator) Mine(ctx context.Context) error {
	list, err := h.api.MyArticles(ctx)
	if err != nil {
		return err
	}
	h.ingestArticles(ListMine, list, 1, fetched{})
	return nil
}

// Author fetches one page of an author's published articles into
// AuthorList(authorID)
func (h *Hydrator) Author(ctx context.Context, authorID string, page, limit int) (api.Page, error) {
	list, err := h.api.AuthorArticles(ctx, authorID, page, limit)
	if err != nil {
		return api.Page{}, err
	}
	h.ingestArticles(AuthorList(authorID), list, page, fetched{})
	return list.Page, nil
}

// Bookmarks fetches one page of the viewer's bookmarks into ListBookmarks
func (h *Hydrator) Bookmarks(ctx context.Context, page, limit int) (api.Page, error) {
	list, err := h.api.ListBookmarks(ctx, page, limit)
	if err != nil {
		return api.Page{}, err
	}
	h.ingestArticles(ListBookmarks, list, page, fetched{bookmark: true})
	return list.Page, nil
}

// Posts fetches one page of posts into ListPosts
func (h *Hydrator) Posts(ctx context.Context, page, limit int) (bool, error) {
	list, err := h.api.ListPosts(ctx, page, limit)
	if err != nil {
		return false, err
	}
	ids := make([]string, 0, len(list.Posts))
	for _, p := range list.Posts {
		h.ingest(PostEntity(p), fetched{comments: true})
		ids = append(ids, p.ID)
	}
	h.setList(ListPosts, ids, page)
	return list.HasMore, nil
}

func (h *Hydrator) ingestArticles(name string, list *api.ArticleList, page int, f fetched) {
	ids := make([]string, 0, len(list.Articles))
	for _, a := range list.Articles {
		e := ArticleEntity(a)
		e.Bookmarked = f.bookmark
		h.ingest(e, f)
		ids = append(ids, a.ID)
	}
	h.setList(name, ids, page)
}

func (h *Hydrator) setList(name string, ids []string, page int) {
	if page > 1 {
		h.engine.Store().AppendList(name, ids...)
		return
	}
	h.engine.Store().SetList(name, ids)
}

// ingest merges e over the cached copy and hands it to the engine, which
// replays pending mutations on top
func (h *Hydrator) ingest(e store.Entity, f fetched) store.Entity {
	if prior, ok := h.engine.Store().Get(e.ID); ok {
		if !f.comments {
			e.Comments = prior.Comments
		}
		if !f.bookmark {
			e.Bookmarked = prior.Bookmarked
		}
		if !f.followers && e.Kind == store.KindUser {
			e.Followers = prior.Followers
		}
		// posts do not report who upvoted. A pending upvote is replayed by
		// Ingest, and the live copy already carries it.
		if e.Kind == store.KindPost && !h.engine.IsPendingSlot(e.ID, "likes") {
			if v := h.viewerID(); v != "" && prior.Likes.Has(v) {
				e.Likes.Add(v)
			}
		}
	}

	h.engine.Ingest(e)
	logger.Debug("Ingested entity", "entity_id", e.ID, "kind", e.Kind)

	if cur, ok := h.engine.Store().Get(e.ID); ok {
		return cur
	}
	return e
}

func (h *Hydrator) viewerID() string {
	if h.viewer == nil {
		return ""
	}
	return h.viewer.UserID()
}

func (h *Hydrator) signedIn() bool {
	return h.viewerID() != ""
}
