// Package service exposes the user-facing operations. Reads go through the
// Hydrator into the entity store; engagement changes are submitted to the
// optimistic engine and return a handle the caller may wait on.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/session"
)

// ErrNoChange is returned when the requested state already holds
var ErrNoChange = errors.New("nothing to change")

// Services bundles every feature service over one engine and session
type Services struct {
	Hydrator  *Hydrator
	Auth      *AuthService
	Articles  *ArticleService
	Posts     *PostService
	Comments  *CommentService
	Bookmarks *BookmarkService
	Follows   *FollowService
}

// New wires the services. sessions must be the viewer the engine was built with.
func New(a *api.API, eng *optimistic.Engine, sessions *session.Manager) *Services {
	h := NewHydrator(a, eng, sessions)
	return &Services{
		Hydrator:  h,
		Auth:      NewAuthService(a, sessions),
		Articles:  NewArticleService(a, eng, h),
		Posts:     NewPostService(a, eng, h),
		Comments:  NewCommentService(eng, h),
		Bookmarks: NewBookmarkService(a, eng, h),
		Follows:   NewFollowService(a, eng, h),
	}
}

// Await waits up to timeout for the mutation to resolve. On timeout it
// returns context.DeadlineExceeded and the mutation stays in flight.
func Await(ctx context.Context, h *optimistic.Handle, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return h.Wait(ctx)
}

// Describe names a mutation kind for messages
func Describe(k optimistic.Kind) string {
	switch k {
	case optimistic.KindToggleLike:
		return "Like"
	case optimistic.KindToggleBookmark:
		return "Bookmark"
	case optimistic.KindToggleFollow:
		return "Follow"
	case optimistic.KindToggleCommentLike:
		return "Comment like"
	case optimistic.KindAddComment:
		return "Comment"
	case optimistic.KindEditComment:
		return "Comment edit"
	case optimistic.KindDeleteComment:
		return "Comment deletion"
	case optimistic.KindDeleteEntity:
		return "Deletion"
	}
	return string(k)
}

// Notifier returns the engine's rollback callback. show defaults to the
// formatter's warning line.
func Notifier(show func(action, message string)) func(*optimistic.RollbackError) {
	if show == nil {
		show = formatter.PrintRolledBack
	}
	return func(rb *optimistic.RollbackError) {
		show(Describe(rb.Kind), rb.Message())
	}
}
