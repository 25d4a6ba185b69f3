package service

import (
	"context"
	"fmt"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/store"
	"github.com/zfogg/inkwell/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// Executor sends each mutation as exactly one REST call. The entity kind
// picks the endpoint family.
type Executor struct {
	api *api.API
}

// NewExecutor creates an executor over a
func NewExecutor(a *api.API) *Executor {
	return &Executor{api: a}
}

// Execute implements optimistic.Executor
func (x *Executor) Execute(ctx context.Context, req optimistic.Request) (optimistic.Result, error) {
	ctx, span := telemetry.StartMutationSpan(ctx, string(req.Kind), req.EntityID, req.MutationID)
	defer span.End()

	logger.Debug("Sending mutation", "mutation_id", req.MutationID, "kind", req.Kind, "entity_id", req.EntityID)
	res, err := x.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (x *Executor) execute(ctx context.Context, req optimistic.Request) (optimistic.Result, error) {
	post := req.EntityKind == store.KindPost

	switch req.Kind {
	case optimistic.KindToggleLike:
		if post {
			return x.upvote(ctx, req)
		}
		st, err := x.api.ToggleArticleLike(ctx, req.EntityID)
		if err != nil {
			return optimistic.Result{}, err
		}
		return likeResult(st), nil

	case optimistic.KindToggleBookmark:
		st, err := x.api.ToggleBookmark(ctx, req.EntityID)
		if err != nil {
			return optimistic.Result{}, err
		}
		return optimistic.Result{Bookmarked: &st.IsBookmarked}, nil

	case optimistic.KindToggleFollow:
		call := x.api.Unfollow
		if req.Target {
			call = x.api.Follow
		}
		counts, err := call(ctx, req.EntityID)
		if err != nil {
			return optimistic.Result{}, err
		}
		following := req.Target
		return optimistic.Result{
			Following:      &following,
			FollowersCount: &counts.FollowersCount,
			FollowingCount: &counts.FollowingCount,
		}, nil

	case optimistic.KindToggleCommentLike:
		st, err := x.api.ToggleCommentLike(ctx, req.CommentID)
		if err != nil {
			return optimistic.Result{}, err
		}
		return likeResult(st), nil

	case optimistic.KindAddComment:
		if post {
			return x.addPostComment(ctx, req)
		}
		c, err := x.api.CreateComment(ctx, req.EntityID, api.CreateCommentRequest{
			Content:       req.Content,
			ParentComment: req.ParentID,
		})
		if err != nil {
			return optimistic.Result{}, err
		}
		sc := CommentFromAPI(req.EntityID, *c)
		return optimistic.Result{Comment: &sc}, nil

	case optimistic.KindEditComment:
		if post {
			p, err := x.api.UpdatePostComment(ctx, req.EntityID, req.CommentID, api.PostCommentRequest{Text: req.Content})
			if err != nil {
				return optimistic.Result{}, err
			}
			return optimistic.Result{Comment: findPostComment(p, req.CommentID)}, nil
		}
		c, err := x.api.UpdateComment(ctx, req.CommentID, api.UpdateCommentRequest{Content: req.Content})
		if err != nil {
			return optimistic.Result{}, err
		}
		sc := CommentFromAPI(req.EntityID, *c)
		return optimistic.Result{Comment: &sc}, nil

	case optimistic.KindDeleteComment:
		var err error
		if post {
			_, err = x.api.DeletePostComment(ctx, req.EntityID, req.CommentID)
		} else {
			err = x.api.DeleteComment(ctx, req.CommentID)
		}
		return optimistic.Result{DeletedID: req.CommentID}, err

	case optimistic.KindDeleteEntity:
		if post {
			id, err := x.api.DeletePost(ctx, req.EntityID)
			if id == "" {
				id = req.EntityID
			}
			return optimistic.Result{DeletedID: id}, err
		}
		err := x.api.DeleteArticle(ctx, req.EntityID)
		return optimistic.Result{DeletedID: req.EntityID}, err
	}

	return optimistic.Result{}, fmt.Errorf("%w: %s", optimistic.ErrUnknownKind, req.Kind)
}

// upvote is one-way; the engine never plans an un-upvote
func (x *Executor) upvote(ctx context.Context, req optimistic.Request) (optimistic.Result, error) {
	if !req.Target {
		return optimistic.Result{}, fmt.Errorf("%w: posts cannot be un-upvoted", optimistic.ErrInvalidIntent)
	}
	p, err := x.api.UpvotePost(ctx, req.EntityID)
	if err != nil {
		return optimistic.Result{}, err
	}
	liked := true
	return optimistic.Result{Liked: &liked, LikesCount: &p.Upvotes}, nil
}

// addPostComment finds the new comment in the returned post: the newest one
// by the viewer with the submitted text
func (x *Executor) addPostComment(ctx context.Context, req optimistic.Request) (optimistic.Result, error) {
	p, err := x.api.AddPostComment(ctx, req.EntityID, api.PostCommentRequest{Text: req.Content})
	if err != nil {
		return optimistic.Result{}, err
	}
	for i := len(p.Comments) - 1; i >= 0; i-- {
		c := p.Comments[i]
		if c.User.ID == req.Viewer && c.Text == req.Content {
			sc := postComment(p.ID, c)
			return optimistic.Result{Comment: &sc}, nil
		}
	}
	// the server accepted it but did not echo it back; drop the pending flag
	return optimistic.Result{}, nil
}

func findPostComment(p *api.Post, id string) *store.Comment {
	for _, c := range p.Comments {
		if c.ID == id {
			sc := postComment(p.ID, c)
			return &sc
		}
	}
	return nil
}

func likeResult(st *api.LikeState) optimistic.Result {
	return optimistic.Result{LikesCount: &st.LikesCount, Liked: &st.IsLiked}
}
