package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/store"
)

// BookmarkService manages the viewer's saved articles
type BookmarkService struct {
	api    *api.API
	engine *optimistic.Engine
	hyd    *Hydrator
}

// NewBookmarkService creates a bookmark service
func NewBookmarkService(a *api.API, eng *optimistic.Engine, h *Hydrator) *BookmarkService {
	return &BookmarkService{api: a, engine: eng, hyd: h}
}

// Toggle saves or unsaves an article
func (s *BookmarkService) Toggle(ctx context.Context, idOrSlug string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, ArticleRef(idOrSlug), optimistic.Intent{Kind: optimistic.KindToggleBookmark})
}

// List returns one page of bookmarks. Articles unbookmarked while the
// page is cached drop out of it immediately.
func (s *BookmarkService) List(ctx context.Context, page, limit int) ([]store.Entity, api.Page, error) {
	p, err := s.hyd.Bookmarks(ctx, page, limit)
	if err != nil {
		return nil, api.Page{}, err
	}
	return selectors.Bookmarked(s.engine.Store(), ListBookmarks), p, nil
}

// Remove deletes a bookmark. It is not optimistic: the cached article
// changes once the server has removed it, underneath any toggle still in
// flight. ErrNoChange means the server had no bookmark to remove.
func (s *BookmarkService) Remove(ctx context.Context, idOrSlug string) (store.Entity, error) {
	e, err := s.hyd.Ensure(ctx, ArticleRef(idOrSlug))
	if err != nil {
		return store.Entity{}, err
	}
	if err := s.api.RemoveBookmark(ctx, e.ID); err != nil {
		if api.IsNotFound(err) {
			return e, ErrNoChange
		}
		return e, err
	}
	s.engine.ApplyRemote(e.ID, "bookmark", func(x *store.Entity) { x.Bookmarked = false })
	cur, _ := s.engine.Store().Get(e.ID)
	return cur, nil
}
