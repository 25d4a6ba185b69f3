package optimistic

import (
	"strings"

	"github.com/zfogg/inkwell/pkg/store"
)

var descriptors = map[Kind]descriptor{
	KindToggleLike: {
		prepare: prepareLike,
		apply: func(e *store.Entity, p Plan) {
			setMember(&e.Likes, &e.LikesCount, p.Viewer, p.Target)
		},
		restore: func(dst, src *store.Entity, _ Plan) {
			dst.Likes = src.Likes.Clone()
			dst.LikesCount = src.LikesCount
		},
		commit: func(e *store.Entity, p Plan, r Result) {
			commitMember(&e.Likes, &e.LikesCount, p.Viewer, r.Liked, r.LikesCount)
		},
	},
	KindToggleBookmark: {
		prepare: prepareBookmark,
		apply: func(e *store.Entity, p Plan) {
			e.Bookmarked = p.Target
		},
		restore: func(dst, src *store.Entity, _ Plan) {
			dst.Bookmarked = src.Bookmarked
		},
		commit: func(e *store.Entity, _ Plan, r Result) {
			if r.Bookmarked != nil {
				e.Bookmarked = *r.Bookmarked
			}
		},
	},
	KindToggleFollow: {
		prepare: prepareFollow,
		apply: func(e *store.Entity, p Plan) {
			setMember(&e.Followers, &e.FollowersCount, p.Viewer, p.Target)
		},
		restore: func(dst, src *store.Entity, _ Plan) {
			dst.Followers = src.Followers.Clone()
			dst.FollowersCount = src.FollowersCount
		},
		commit: func(e *store.Entity, p Plan, r Result) {
			commitMember(&e.Followers, &e.FollowersCount, p.Viewer, r.Following, r.FollowersCount)
		},
	},
	KindToggleCommentLike: {
		prepare: prepareCommentLike,
		apply: func(e *store.Entity, p Plan) {
			if c, ok := e.FindComment(p.CommentID); ok {
				setMember(&c.Likes, &c.LikesCount, p.Viewer, p.Target)
			}
		},
		restore: func(dst, src *store.Entity, p Plan) {
			d, ok := dst.FindComment(p.CommentID)
			s, ok2 := src.FindComment(p.CommentID)
			if ok && ok2 {
				d.Likes = s.Likes.Clone()
				d.LikesCount = s.LikesCount
			}
		},
		commit: func(e *store.Entity, p Plan, r Result) {
			if c, ok := e.FindComment(p.CommentID); ok {
				commitMember(&c.Likes, &c.LikesCount, p.Viewer, r.Liked, r.LikesCount)
			}
		},
	},
	KindAddComment: {
		prepare: prepareAddComment,
		apply:   applyAddComment,
		restore: restoreAddComment,
		commit:  commitAddComment,
	},
	KindEditComment: {
		prepare: prepareEditComment,
		apply: func(e *store.Entity, p Plan) {
			if c, ok := e.FindComment(p.CommentID); ok {
				c.Content = p.Content
				c.IsEdited = true
				c.UpdatedAt = p.At
			}
		},
		restore: restoreCommentBody,
		commit: func(e *store.Entity, p Plan, r Result) {
			c, ok := e.FindComment(p.CommentID)
			if !ok || r.Comment == nil {
				return
			}
			c.Content = r.Comment.Content
			c.IsEdited = true
			if !r.Comment.UpdatedAt.IsZero() {
				c.UpdatedAt = r.Comment.UpdatedAt
			}
		},
	},
	KindDeleteComment: {
		prepare: prepareDeleteComment,
		apply: func(e *store.Entity, p Plan) {
			if c, ok := e.FindComment(p.CommentID); ok {
				c.Tombstone()
			}
		},
		restore: restoreCommentBody,
		commit: func(e *store.Entity, p Plan, _ Result) {
			if c, ok := e.FindComment(p.CommentID); ok {
				c.Tombstone()
			}
		},
	},
	KindDeleteEntity: {
		prepare: prepareDeleteEntity,
		removes: true,
	},
}

func basePlan(e *store.Entity, in Intent, v viewer, slot string) Plan {
	return Plan{
		Kind:       in.Kind,
		EntityID:   e.ID,
		EntityKind: e.Kind,
		Slot:       slot,
		Viewer:     v.id,
		ViewerName: v.name,
		CommentID:  in.CommentID,
		ParentID:   in.ParentID,
		Content:    in.Content,
		At:         v.now,
	}
}

// setMember moves the viewer in or out of a membership set. The paired
// counter only moves when membership actually changed.
func setMember(set *store.Set, count *int, id string, member bool) {
	if member {
		if set.Add(id) {
			*count++
		}
		return
	}
	if set.Remove(id) && *count > 0 {
		*count--
	}
}

func commitMember(set *store.Set, count *int, id string, member *bool, serverCount *int) {
	if member != nil {
		if serverCount != nil {
			if *member {
				set.Add(id)
			} else {
				set.Remove(id)
			}
		} else {
			setMember(set, count, id, *member)
		}
	}
	if serverCount != nil {
		*count = *serverCount
	}
}

func prepareLike(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind != store.KindArticle && e.Kind != store.KindPost {
		return Plan{}, invalid("entity", "only articles and posts can be liked", nil)
	}
	p := basePlan(e, in, v, "likes")
	p.Target = !e.Likes.Has(v.id)
	if e.Kind == store.KindPost && !p.Target {
		return Plan{}, invalid("like", "post already upvoted", nil)
	}
	return p, nil
}

func prepareBookmark(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind != store.KindArticle {
		return Plan{}, invalid("entity", "only articles can be bookmarked", nil)
	}
	p := basePlan(e, in, v, "bookmark")
	p.Target = !e.Bookmarked
	return p, nil
}

func prepareFollow(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind != store.KindUser {
		return Plan{}, invalid("entity", "only users can be followed", nil)
	}
	if e.ID == v.id {
		return Plan{}, invalid("user", "you cannot follow yourself", nil)
	}
	p := basePlan(e, in, v, "followers")
	p.Target = !e.Followers.Has(v.id)
	return p, nil
}

// postedComment finds a comment that exists on the server
func postedComment(e *store.Entity, id string) (*store.Comment, error) {
	if id == "" {
		return nil, invalid("comment", "comment id is required", nil)
	}
	c, ok := e.FindComment(id)
	if !ok {
		return nil, invalid("comment", "comment not found: "+id, store.ErrCommentNotFound)
	}
	if c.Optimistic {
		return nil, invalid("comment", "comment has not been posted yet", ErrPendingComment)
	}
	return c, nil
}

func prepareCommentLike(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind != store.KindArticle {
		return Plan{}, invalid("entity", "only article comments can be liked", nil)
	}
	c, err := postedComment(e, in.CommentID)
	if err != nil {
		return Plan{}, err
	}
	if c.IsDeleted {
		return Plan{}, invalid("comment", "comment was deleted", nil)
	}
	p := basePlan(e, in, v, "comment-like:"+c.ID)
	p.Target = !c.Likes.Has(v.id)
	return p, nil
}

func checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content", "comment cannot be empty", nil)
	}
	if len(content) > MaxCommentLength {
		return "", invalid("content", "comment exceeds 2000 characters", nil)
	}
	return content, nil
}

func prepareAddComment(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind == store.KindUser {
		return Plan{}, invalid("entity", "users cannot be commented on", nil)
	}
	content, err := checkContent(in.Content)
	if err != nil {
		return Plan{}, err
	}
	if in.ParentID != "" {
		if e.Kind == store.KindPost {
			return Plan{}, invalid("parent", "post comments do not take replies", nil)
		}
		parent, err := postedComment(e, in.ParentID)
		if err != nil {
			return Plan{}, err
		}
		if parent.IsReply() {
			return Plan{}, invalid("parent", "replies cannot have replies", store.ErrNestedReply)
		}
		if parent.IsDeleted {
			return Plan{}, invalid("parent", "cannot reply to a deleted comment", nil)
		}
	}

	tmp := v.tempID()
	p := basePlan(e, in, v, "comment:"+tmp)
	p.CommentID = tmp
	p.Content = content
	return p, nil
}

func applyAddComment(e *store.Entity, p Plan) {
	if e.HasComment(p.CommentID) {
		return
	}
	c := store.Comment{
		ID:         p.CommentID,
		EntityID:   p.EntityID,
		ParentID:   p.ParentID,
		AuthorID:   p.Viewer,
		AuthorName: p.ViewerName,
		Content:    p.Content,
		Optimistic: true,
		CreatedAt:  p.At,
		UpdatedAt:  p.At,
	}
	if e.InsertComment(c) == nil {
		e.CommentsCount++
	}
}

func restoreAddComment(dst, src *store.Entity, p Plan) {
	c, ok := src.FindComment(p.CommentID)
	if !ok {
		if dst.RemoveComment(p.CommentID) && dst.CommentsCount > 0 {
			dst.CommentsCount--
		}
		return
	}
	if !dst.HasComment(p.CommentID) && dst.InsertComment(c.Clone()) == nil {
		dst.CommentsCount++
	}
}

func commitAddComment(e *store.Entity, p Plan, r Result) {
	if r.Comment == nil {
		if c, ok := e.FindComment(p.CommentID); ok {
			c.Optimistic = false
		}
		return
	}

	srv := r.Comment.Clone()
	srv.Optimistic = false
	srv.EntityID = p.EntityID
	if srv.ParentID == "" {
		srv.ParentID = p.ParentID
	}

	// The server copy may already be here from a live update.
	if e.HasComment(srv.ID) {
		if e.RemoveComment(p.CommentID) && e.CommentsCount > 0 {
			e.CommentsCount--
		}
		return
	}
	if e.ReplaceComment(p.CommentID, srv) {
		return
	}
	if e.InsertComment(srv) == nil {
		e.CommentsCount++
	}
}

func prepareEditComment(e *store.Entity, in Intent, v viewer) (Plan, error) {
	c, err := postedComment(e, in.CommentID)
	if err != nil {
		return Plan{}, err
	}
	if c.IsDeleted {
		return Plan{}, invalid("comment", "comment was deleted", nil)
	}
	content, err := checkContent(in.Content)
	if err != nil {
		return Plan{}, err
	}
	p := basePlan(e, in, v, "comment:"+c.ID)
	p.Content = content
	return p, nil
}

func prepareDeleteComment(e *store.Entity, in Intent, v viewer) (Plan, error) {
	c, err := postedComment(e, in.CommentID)
	if err != nil {
		return Plan{}, err
	}
	if c.IsDeleted {
		return Plan{}, invalid("comment", "comment already deleted", nil)
	}
	return basePlan(e, in, v, "comment:"+c.ID), nil
}

func restoreCommentBody(dst, src *store.Entity, p Plan) {
	d, ok := dst.FindComment(p.CommentID)
	s, ok2 := src.FindComment(p.CommentID)
	if !ok || !ok2 {
		return
	}
	d.Content = s.Content
	d.IsEdited = s.IsEdited
	d.IsDeleted = s.IsDeleted
	d.UpdatedAt = s.UpdatedAt
}

func prepareDeleteEntity(e *store.Entity, in Intent, v viewer) (Plan, error) {
	if e.Kind == store.KindUser {
		return Plan{}, invalid("entity", "users cannot be deleted here", nil)
	}
	return basePlan(e, in, v, "entity"), nil
}
