package websocket

import "github.com/zfogg/inkwell/pkg/api"

// LikeCountUpdate reports a like or unlike by any user on an article,
// post or comment
type LikeCountUpdate struct {
	EntityID   string `json:"entityId"`
	CommentID  string `json:"commentId,omitempty"`
	UserID     string `json:"userId"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likesCount"`
}

// CommentAdded carries a comment created by any user
type CommentAdded struct {
	ArticleID string      `json:"articleId"`
	Comment   api.Comment `json:"comment"`
}

// FollowerCountUpdate reports a follow or unfollow of UserID
type FollowerCountUpdate struct {
	UserID         string `json:"userId"`
	FollowerID     string `json:"followerId"`
	Following      bool   `json:"following"`
	FollowersCount int    `json:"followersCount"`
}

// BookmarkUpdate reports a bookmark change made by the viewer on another device
type BookmarkUpdate struct {
	ArticleID    string `json:"articleId"`
	IsBookmarked bool   `json:"isBookmarked"`
}
