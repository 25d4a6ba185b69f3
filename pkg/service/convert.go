package service

import (
	"time"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/store"
)

// ArticleEntity converts an article. Bookmark state and comments come from
// separate calls and are left empty.
func ArticleEntity(a api.Article) store.Entity {
	return store.Entity{
		ID:            a.ID,
		Kind:          store.KindArticle,
		Title:         a.Title,
		Slug:          a.Slug,
		Excerpt:       a.Excerpt,
		Content:       string(a.Content),
		Tags:          a.Tags,
		Category:      a.Category,
		Status:        a.Status,
		AuthorID:      a.Author.ID,
		AuthorName:    a.Author.Name,
		Likes:         store.NewSet(a.Likes...),
		LikesCount:    a.LikesCount,
		CommentsCount: a.CommentsCount,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// CommentFromAPI converts an article comment and its replies
func CommentFromAPI(entityID string, c api.Comment) store.Comment {
	out := store.Comment{
		ID:         c.ID,
		EntityID:   entityID,
		AuthorID:   c.Author.ID,
		AuthorName: c.Author.Name,
		Content:    c.Content,
		Likes:      store.NewSet(c.Likes...),
		LikesCount: c.LikesCount,
		IsDeleted:  c.IsDeleted,
		IsEdited:   edited(c.CreatedAt, c.UpdatedAt),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.ParentComment != nil {
		out.ParentID = *c.ParentComment
	}
	for _, r := range c.Replies {
		out.Replies = append(out.Replies, CommentFromAPI(entityID, r))
	}
	return out
}

func edited(created, updated time.Time) bool {
	return updated.Sub(created) > time.Second
}

// PostEntity converts a post. The server reports only the upvote count, so
// the viewer's own upvote is carried over from the cache by the hydrator.
func PostEntity(p api.Post) store.Entity {
	e := store.Entity{
		ID:            p.ID,
		Kind:          store.KindPost,
		Title:         p.Title,
		Content:       p.Content,
		AuthorID:      p.Author.ID,
		AuthorName:    p.Author.Name,
		LikesCount:    p.Upvotes,
		CommentsCount: len(p.Comments),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, c := range p.Comments {
		e.Comments = append(e.Comments, postComment(p.ID, c))
	}
	return e
}

func postComment(postID string, c api.PostComment) store.Comment {
	return store.Comment{
		ID:         c.ID,
		EntityID:   postID,
		AuthorID:   c.User.ID,
		AuthorName: c.User.Name,
		Content:    c.Text,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.CreatedAt,
	}
}

// UserEntity converts a profile. followers may be nil when the listing was
// not fetched.
func UserEntity(u api.User, followers []api.FollowUser) store.Entity {
	e := store.Entity{
		ID:             u.ID,
		Kind:           store.KindUser,
		Title:          u.Name,
		Content:        u.Bio,
		AuthorID:       u.ID,
		AuthorName:     u.Name,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	ids := make([]string, 0, len(followers))
	for _, f := range followers {
		ids = append(ids, f.ID)
	}
	e.Followers = store.NewSet(ids...)
	return e
}
