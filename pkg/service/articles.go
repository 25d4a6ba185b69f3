package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/store"
)

// ArticleService reads and writes long-form articles
type ArticleService struct {
	api    *api.API
	engine *optimistic.Engine
	hyd    *Hydrator
}

// NewArticleService creates an article service
func NewArticleService(a *api.API, eng *optimistic.Engine, h *Hydrator) *ArticleService {
	return &ArticleService{api: a, engine: eng, hyd: h}
}

// List returns one page of the listing matching p
func (s *ArticleService) List(ctx context.Context, p api.ArticleParams) ([]store.Entity, api.Page, error) {
	page, err := s.hyd.Articles(ctx, p)
	if err != nil {
		return nil, api.Page{}, err
	}
	return selectors.Feed(s.engine.Store(), ListArticles), page, nil
}

// Featured returns the featured articles
func (s *ArticleService) Featured(ctx context.Context) ([]store.Entity, error) {
	if err := s.hyd.Featured(ctx); err != nil {
		return nil, err
	}
	return selectors.Feed(s.engine.Store(), ListFeatured), nil
}

// Mine returns the viewer's own articles, drafts included
func (s *ArticleService) Mine(ctx context.Context) ([]store.Entity, error) {
	if err := s.hyd.Mine(ctx); err != nil {
		return nil, err
	}
	return selectors.Feed(s.engine.Store(), ListMine), nil
}

// ByAuthor returns one page of an author's published articles
func (s *ArticleService) ByAuthor(ctx context.Context, authorID string, page, limit int) ([]store.Entity, api.Page, error) {
	p, err := s.hyd.Author(ctx, authorID, page, limit)
	if err != nil {
		return nil, api.Page{}, err
	}
	return selectors.Feed(s.engine.Store(), AuthorList(authorID)), p, nil
}

// Show loads an article by id or slug
func (s *ArticleService) Show(ctx context.Context, idOrSlug string) (store.Entity, error) {
	return s.hyd.Article(ctx, idOrSlug)
}

// Create publishes or drafts an article. It is not optimistic: the entity
// exists locally only once the server has assigned its id.
func (s *ArticleService) Create(ctx context.Context, req api.CreateArticleRequest) (store.Entity, error) {
	a, err := s.api.CreateArticle(ctx, req)
	if err != nil {
		return store.Entity{}, err
	}
	e := s.hyd.ingest(ArticleEntity(*a), fetched{comments: true})
	s.engine.Store().AppendList(ListMine, e.ID)
	return e, nil
}

// Update edits an article and ingests the server's copy
func (s *ArticleService) Update(ctx context.Context, idOrSlug string, req api.UpdateArticleRequest) (store.Entity, error) {
	cur, err := s.hyd.Ensure(ctx, ArticleRef(idOrSlug))
	if err != nil {
		return store.Entity{}, err
	}
	a, err := s.api.UpdateArticle(ctx, cur.ID, req)
	if err != nil {
		return store.Entity{}, err
	}
	return s.hyd.ingest(ArticleEntity(*a), fetched{}), nil
}

// Delete removes the article from every list at once and asks the server
// to delete it
func (s *ArticleService) Delete(ctx context.Context, idOrSlug string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, ArticleRef(idOrSlug), optimistic.Intent{Kind: optimistic.KindDeleteEntity})
}

// Like toggles the viewer's like
func (s *ArticleService) Like(ctx context.Context, idOrSlug string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, ArticleRef(idOrSlug), optimistic.Intent{Kind: optimistic.KindToggleLike})
}

// submit makes sure the entity is cached, then hands the intent to the
// engine with the resolved id
func submit(ctx context.Context, h *Hydrator, eng *optimistic.Engine, ref Ref, in optimistic.Intent) (*optimistic.Handle, error) {
	e, err := h.Ensure(ctx, ref)
	if err != nil {
		return nil, err
	}
	in.EntityID = e.ID
	return eng.Submit(in)
}
