// Package selectors derives read-only views from the entity store. Every
// function is pure and cheap enough to call on each render.
package selectors

import (
	"github.com/zfogg/inkwell/pkg/store"
)

// PendingChecker reports whether an entity has unresolved mutations
type PendingChecker interface {
	IsPending(entityID string) bool
}

// LikeSummary is what a like button shows
type LikeSummary struct {
	Count int
	Liked bool
}

// CommentView is a comment prepared for display
type CommentView struct {
	ID         string
	AuthorID   string
	AuthorName string
	Content    string
	LikesCount int
	Liked      bool
	Deleted    bool
	Edited     bool
	Pending    bool
	Replies    []CommentView
}

// IsLikedBy reports whether viewer is in the entity's likes
func IsLikedBy(e store.Entity, viewer string) bool {
	return viewer != "" && e.Likes.Has(viewer)
}

// IsBookmarked reports the viewer's bookmark flag
func IsBookmarked(e store.Entity) bool {
	return e.Bookmarked
}

// IsFollowing reports whether viewer follows the user entity
func IsFollowing(u store.Entity, viewer string) bool {
	return viewer != "" && u.Followers.Has(viewer)
}

// Likes returns the like count and whether viewer is among the likers
func Likes(e store.Entity, viewer string) LikeSummary {
	return LikeSummary{Count: e.LikesCount, Liked: IsLikedBy(e, viewer)}
}

// CommentTree returns the entity's comments in stored order with replies
// nested under their parents. Deleted comments keep their place with the
// placeholder text.
func CommentTree(r store.Reader, entityID, viewer string) []CommentView {
	e, ok := r.Get(entityID)
	if !ok {
		return nil
	}
	out := make([]CommentView, 0, len(e.Comments))
	for _, c := range e.Comments {
		v := commentView(c, viewer)
		for _, reply := range c.Replies {
			v.Replies = append(v.Replies, commentView(reply, viewer))
		}
		out = append(out, v)
	}
	return out
}

func commentView(c store.Comment, viewer string) CommentView {
	content := c.Content
	if c.IsDeleted {
		content = store.DeletedPlaceholder
	}
	return CommentView{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    content,
		LikesCount: c.LikesCount,
		Liked:      viewer != "" && c.Likes.Has(viewer),
		Deleted:    c.IsDeleted,
		Edited:     c.IsEdited,
		Pending:    c.Optimistic,
	}
}

// CountComments counts comments and replies that are not tombstoned
func CountComments(e store.Entity) int {
	n := 0
	e.WalkComments(func(c *store.Comment) {
		if !c.IsDeleted {
			n++
		}
	})
	return n
}

// Feed resolves a named list to entities, skipping ids no longer cached
func Feed(r store.Reader, list string) []store.Entity {
	ids := r.List(list)
	out := make([]store.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Bookmarked returns the entities in list that are still bookmarked
func Bookmarked(r store.Reader, list string) []store.Entity {
	var out []store.Entity
	for _, e := range Feed(r, list) {
		if e.Bookmarked {
			out = append(out, e)
		}
	}
	return out
}

// Syncing reports whether the entity has changes not yet confirmed
func Syncing(p PendingChecker, entityID string) bool {
	return p != nil && p.IsPending(entityID)
}
