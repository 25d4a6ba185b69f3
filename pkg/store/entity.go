package store

import (
	"errors"
	"time"
)

// Kind identifies which REST resource family an entity belongs to
type Kind string

const (
	KindArticle Kind = "article"
	KindPost    Kind = "post"
	KindUser    Kind = "user"
)

// DeletedPlaceholder replaces the content of a tombstoned comment
const DeletedPlaceholder = "[Comment deleted]"

var (
	ErrNotFound        = errors.New("entity not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrNestedReply     = errors.New("replies cannot have replies")
)

// Comment is a node in an entity's comment tree. Top-level comments carry
// replies; replies never do.
type Comment struct {
	ID         string    `json:"id"`
	EntityID   string    `json:"entity_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Likes      Set       `json:"likes"`
	LikesCount int       `json:"likes_count"`
	Replies    []Comment `json:"replies,omitempty"`
	IsDeleted  bool      `json:"is_deleted"`
	IsEdited   bool      `json:"is_edited"`
	Optimistic bool      `json:"optimistic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsReply reports whether the comment hangs off a top-level comment
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// Clone returns a deep copy of the comment and its replies
func (c Comment) Clone() Comment {
	out := c
	out.Likes = c.Likes.Clone()
	out.Replies = cloneComments(c.Replies)
	return out
}

// Entity is any record with engagement fields: an article, a post or a user.
type Entity struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title,omitempty"`
	Slug       string   `json:"slug,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Content    string   `json:"content,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Category   string   `json:"category,omitempty"`
	Status     string   `json:"status,omitempty"`
	AuthorID   string   `json:"author_id,omitempty"`
	AuthorName string   `json:"author_name,omitempty"`

	Likes          Set       `json:"likes"`
	LikesCount     int       `json:"likes_count"`
	Bookmarked     bool      `json:"bookmarked"`
	Comments       []Comment `json:"comments,omitempty"`
	CommentsCount  int       `json:"comments_count"`
	Followers      Set       `json:"followers"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Nothing in the copy aliases the original.
func (e Entity) Clone() Entity {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	out.Likes = e.Likes.Clone()
	out.Followers = e.Followers.Clone()
	out.Comments = cloneComments(e.Comments)
	return out
}

func cloneComments(in []Comment) []Comment {
	if in == nil {
		return nil
	}
	out := make([]Comment, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
