package optimistic

import (
	"time"

	"github.com/zfogg/inkwell/pkg/store"
)

// Kind names a mutation type
type Kind string

const (
	KindToggleLike        Kind = "toggle-like"
	KindToggleBookmark    Kind = "toggle-bookmark"
	KindToggleFollow      Kind = "toggle-follow"
	KindToggleCommentLike Kind = "toggle-comment-like"
	KindAddComment        Kind = "add-comment"
	KindEditComment       Kind = "edit-comment"
	KindDeleteComment     Kind = "delete-comment"
	KindDeleteEntity      Kind = "delete-entity"
)

// MaxCommentLength bounds comment content
const MaxCommentLength = 2000

// Intent is what the user asked for
type Intent struct {
	Kind      Kind
	EntityID  string
	CommentID string
	ParentID  string
	Content   string
}

// Plan is an intent resolved against local state at submit time. Toggles
// carry the membership the viewer ends up with, so applying a plan twice
// has the same effect as applying it once.
type Plan struct {
	Kind       Kind
	EntityID   string
	EntityKind store.Kind
	Slot       string
	Viewer     string
	ViewerName string
	Target     bool
	CommentID  string
	ParentID   string
	Content    string
	At         time.Time
}

// Request is handed to the Executor; one request maps to one remote call
type Request struct {
	MutationID string
	Plan
}

// Result carries whatever authoritative data the server returned.
// Nil fields mean "not reported".
type Result struct {
	LikesCount     *int
	Liked          *bool
	Bookmarked     *bool
	FollowersCount *int
	FollowingCount *int
	Following      *bool
	Comment        *store.Comment
	DeletedID      string
}

// descriptor is the per-kind strategy. prepare validates and resolves an
// intent without touching state; apply, restore and commit operate only on
// the fields owned by the plan's slot.
type descriptor struct {
	prepare func(e *store.Entity, in Intent, v viewer) (Plan, error)
	apply   func(e *store.Entity, p Plan)
	restore func(dst *store.Entity, src *store.Entity, p Plan)
	commit  func(e *store.Entity, p Plan, r Result)
	removes bool
}

type viewer struct {
	id     string
	name   string
	now    time.Time
	tempID func() string
}

func lookup(k Kind) (descriptor, bool) {
	d, ok := descriptors[k]
	return d, ok
}
