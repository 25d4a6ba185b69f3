package api

import (
	stdjson "encoding/json"
	"time"

	json "github.com/json-iterator/go"
)

// Author is an embedded user reference. Routes that do not populate it send
// the bare id instead of an object.
type Author struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	Bio            string `json:"bio,omitempty"`
	FollowersCount int    `json:"followersCount,omitempty"`
}

func (a *Author) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.ID)
	}
	type plain Author
	return json.Unmarshal(data, (*plain)(a))
}

// User is an account as returned by /auth and /users routes
type User struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Avatar         string    `json:"avatar,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Role           string    `json:"role"`
	IsVerified     bool      `json:"isVerified"`
	Website        string    `json:"website,omitempty"`
	ArticlesCount  int       `json:"articlesCount"`
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Article is a long-form entry. Content is editor output and is kept opaque.
type Article struct {
	ID              string             `json:"_id"`
	Title           string             `json:"title"`
	Slug            string             `json:"slug"`
	CoverImage      string             `json:"coverImage,omitempty"`
	Content         stdjson.RawMessage `json:"content,omitempty"`
	Excerpt         string             `json:"excerpt,omitempty"`
	Author          Author             `json:"author"`
	Status          string             `json:"status"`
	PublishedAt     *time.Time         `json:"publishedAt,omitempty"`
	Tags            []string           `json:"tags"`
	Category        string             `json:"category,omitempty"`
	MetaDescription string             `json:"metaDescription,omitempty"`
	Views           int                `json:"views"`
	Likes           []string           `json:"likes"`
	LikesCount      int                `json:"likesCount"`
	ReadingTime     int                `json:"readingTime"`
	CommentsCount   int                `json:"commentsCount"`
	IsFeatured      bool               `json:"isFeatured"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// ArticleList is one page of articles
type ArticleList struct {
	Articles []Article
	Page
}

// ArticleParams filters GET /articles
type ArticleParams struct {
	Page     int    `validate:"gte=0"`
	Limit    int    `validate:"gte=0,lte=100"`
	Tag      string `validate:"omitempty,max=50"`
	Category string `validate:"omitempty,max=50"`
	Search   string `validate:"omitempty,max=200"`
	Author   string
}

// CreateArticleRequest is the body of POST /articles
type CreateArticleRequest struct {
	Title           string             `json:"title" validate:"required,max=200"`
	Content         stdjson.RawMessage `json:"content" validate:"required"`
	CoverImage      string             `json:"coverImage,omitempty" validate:"omitempty,url"`
	Tags            []string           `json:"tags,omitempty" validate:"max=10,dive,max=50"`
	Category        string             `json:"category,omitempty"`
	Status          string             `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	MetaDescription string             `json:"metaDescription,omitempty" validate:"max=300"`
}

// UpdateArticleRequest is the body of PUT /articles/:id; empty fields are left alone
type UpdateArticleRequest struct {
	Title           string             `json:"title,omitempty" validate:"max=200"`
	Content         stdjson.RawMessage `json:"content,omitempty"`
	CoverImage      string             `json:"coverImage,omitempty" validate:"omitempty,url"`
	Tags            []string           `json:"tags,omitempty" validate:"max=10,dive,max=50"`
	Category        string             `json:"category,omitempty"`
	Status          string             `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	MetaDescription string             `json:"metaDescription,omitempty" validate:"max=300"`
}

// LikeState is returned by the like toggles
type LikeState struct {
	LikesCount int  `json:"likesCount"`
	IsLiked    bool `json:"isLiked"`
}

// Comment is an article comment. Top-level comments carry their replies.
type Comment struct {
	ID            string    `json:"_id"`
	Content       string    `json:"content"`
	Article       string    `json:"article"`
	Author        Author    `json:"author"`
	ParentComment *string   `json:"parentComment,omitempty"`
	Likes         []string  `json:"likes"`
	LikesCount    int       `json:"likesCount"`
	RepliesCount  int       `json:"repliesCount,omitempty"`
	Replies       []Comment `json:"replies,omitempty"`
	IsDeleted     bool      `json:"isDeleted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateCommentRequest is the body of POST /articles/:id/comments
type CreateCommentRequest struct {
	Content       string `json:"content" validate:"required,max=2000"`
	ParentComment string `json:"parentComment,omitempty"`
}

// UpdateCommentRequest is the body of PUT /comments/:id
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// Post is a short-form entry. Its routes answer without an envelope.
type Post struct {
	ID        string        `json:"_id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    Author        `json:"author"`
	Upvotes   int           `json:"upvotes"`
	Image     *PostImage    `json:"image,omitempty"`
	Comments  []PostComment `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PostImage is a post's uploaded image
type PostImage struct {
	URL string `json:"url"`
}

// PostComment is a flat comment on a post
type PostComment struct {
	ID        string    `json:"_id"`
	User      Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostList is one page of posts
type PostList struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"hasMore"`
}

// CreatePostRequest is the body of POST /posts
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest is the body of PATCH /posts/:id
type UpdatePostRequest struct {
	Title   string `json:"title,omitempty" validate:"max=200"`
	Content string `json:"content,omitempty"`
}

// PostCommentRequest is the body of the post comment routes
type PostCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// BookmarkState is returned by the bookmark routes
type BookmarkState struct {
	IsBookmarked bool `json:"isBookmarked"`
}

// FollowCounts is returned by follow and unfollow
type FollowCounts struct {
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}

// FollowUser is an entry in a followers or following listing
type FollowUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// UpdateProfileRequest is the body of PUT /auth/updatedetails
type UpdateProfileRequest struct {
	Name    string `json:"name,omitempty" validate:"max=50"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Bio     string `json:"bio,omitempty" validate:"max=500"`
	Avatar  string `json:"avatar,omitempty" validate:"omitempty,url"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
}
