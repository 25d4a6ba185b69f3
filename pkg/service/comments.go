package service

import (
	"context"

	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/selectors"
)

// CommentService manages comment threads on articles and posts. Every
// change is optimistic.
type CommentService struct {
	engine *optimistic.Engine
	hyd    *Hydrator
}

// NewCommentService creates a comment service
func NewCommentService(eng *optimistic.Engine, h *Hydrator) *CommentService {
	return &CommentService{engine: eng, hyd: h}
}

// List fetches the thread and returns it as displayed
func (s *CommentService) List(ctx context.Context, ref Ref) ([]selectors.CommentView, error) {
	e, err := s.hyd.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return selectors.CommentTree(s.engine.Store(), e.ID, s.hyd.viewerID()), nil
}

// Add posts a top-level comment
func (s *CommentService) Add(ctx context.Context, ref Ref, content string) (*optimistic.Handle, error) {
	return s.submit(ctx, ref, optimistic.Intent{Kind: optimistic.KindAddComment, Content: content})
}

// Reply posts a reply under a top-level comment
func (s *CommentService) Reply(ctx context.Context, ref Ref, parentID, content string) (*optimistic.Handle, error) {
	return s.submit(ctx, ref, optimistic.Intent{Kind: optimistic.KindAddComment, ParentID: parentID, Content: content})
}

// Edit replaces a comment's content
func (s *CommentService) Edit(ctx context.Context, ref Ref, commentID, content string) (*optimistic.Handle, error) {
	return s.submit(ctx, ref, optimistic.Intent{Kind: optimistic.KindEditComment, CommentID: commentID, Content: content})
}

// Delete tombstones a comment; its replies stay visible
func (s *CommentService) Delete(ctx context.Context, ref Ref, commentID string) (*optimistic.Handle, error) {
	return s.submit(ctx, ref, optimistic.Intent{Kind: optimistic.KindDeleteComment, CommentID: commentID})
}

// Like toggles the viewer's like on an article comment
func (s *CommentService) Like(ctx context.Context, ref Ref, commentID string) (*optimistic.Handle, error) {
	return s.submit(ctx, ref, optimistic.Intent{Kind: optimistic.KindToggleCommentLike, CommentID: commentID})
}

func (s *CommentService) submit(ctx context.Context, ref Ref, in optimistic.Intent) (*optimistic.Handle, error) {
	return submit(ctx, s.hyd, s.engine, ref, in)
}
