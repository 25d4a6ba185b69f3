package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
	"github.com/zfogg/inkwell/pkg/store"
)

// PostService reads and writes short-form posts
type PostService struct {
	api    *api.API
	engine *optimistic.Engine
	hyd    *Hydrator
}

// NewPostService creates a post service
func NewPostService(a *api.API, eng *optimistic.Engine, h *Hydrator) *PostService {
	return &PostService{api: a, engine: eng, hyd: h}
}

// List returns one page of posts and whether more follow
func (s *PostService) List(ctx context.Context, page, limit int) ([]store.Entity, bool, error) {
	more, err := s.hyd.Posts(ctx, page, limit)
	if err != nil {
		return nil, false, err
	}
	return selectors.Feed(s.engine.Store(), ListPosts), more, nil
}

// Show loads a post with its comments
func (s *PostService) Show(ctx context.Context, id string) (store.Entity, error) {
	return s.hyd.Post(ctx, id)
}

// Create publishes a post
func (s *PostService) Create(ctx context.Context, title, content string) (store.Entity, error) {
	p, err := s.api.CreatePost(ctx, api.CreatePostRequest{Title: title, Content: content})
	if err != nil {
		return store.Entity{}, err
	}
	e := s.hyd.ingest(PostEntity(*p), fetched{comments: true})
	list := s.engine.Store().List(ListPosts)
	s.engine.Store().SetList(ListPosts, append([]string{e.ID}, list...))
	return e, nil
}

// Update edits a post's title or content
func (s *PostService) Update(ctx context.Context, id string, req api.UpdatePostRequest) (store.Entity, error) {
	p, err := s.api.UpdatePost(ctx, id, req)
	if err != nil {
		return store.Entity{}, err
	}
	return s.hyd.ingest(PostEntity(*p), fetched{comments: true}), nil
}

// Delete removes the post optimistically
func (s *PostService) Delete(ctx context.Context, id string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, PostRef(id), optimistic.Intent{Kind: optimistic.KindDeleteEntity})
}

// Upvote adds the viewer's upvote. Posts cannot be un-upvoted.
func (s *PostService) Upvote(ctx context.Context, id string) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, PostRef(id), optimistic.Intent{Kind: optimistic.KindToggleLike})
}
