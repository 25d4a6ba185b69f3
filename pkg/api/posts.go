package api

import (
	"context"
	"net/http"
)

// ListPosts returns one page of posts, newest first
func (a *API) ListPosts(ctx context.Context, page, limit int) (*PostList, error) {
	var list PostList
	if err := a.bare(ctx, http.MethodGet, "/posts", nil, pageQuery(page, limit), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetPost fetches a post with its comments
func (a *API) GetPost(ctx context.Context, id string) (*Post, error) {
	return a.post(ctx, http.MethodGet, "/posts/"+escape(id), nil)
}

// CreatePost creates a post
func (a *API) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.post(ctx, http.MethodPost, "/posts", req)
}

// UpdatePost edits a post
func (a *API) UpdatePost(ctx context.Context, id string, req UpdatePostRequest) (*Post, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.post(ctx, http.MethodPatch, "/posts/"+escape(id), req)
}

// DeletePost removes a post and returns the deleted id
func (a *API) DeletePost(ctx context.Context, id string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := a.bare(ctx, http.MethodDelete, "/posts/"+escape(id), nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		resp.ID = id
	}
	return resp.ID, nil
}

// UpvotePost adds the viewer's upvote. Upvotes cannot be withdrawn.
func (a *API) UpvotePost(ctx context.Context, id string) (*Post, error) {
	return a.post(ctx, http.MethodPost, "/posts/upvote/"+escape(id), nil)
}

// AddPostComment comments on a post and returns the updated post
func (a *API) AddPostComment(ctx context.Context, postID string, req PostCommentRequest) (*Post, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.post(ctx, http.MethodPost, "/posts/"+escape(postID)+"/comments", req)
}

// UpdatePostComment edits a post comment and returns the updated post
func (a *API) UpdatePostComment(ctx context.Context, postID, commentID string, req PostCommentRequest) (*Post, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.post(ctx, http.MethodPut, "/posts/"+escape(postID)+"/comments/"+escape(commentID), req)
}

// DeletePostComment removes a post comment and returns the updated post
func (a *API) DeletePostComment(ctx context.Context, postID, commentID string) (*Post, error) {
	return a.post(ctx, http.MethodDelete, "/posts/"+escape(postID)+"/comments/"+escape(commentID), nil)
}

func (a *API) post(ctx context.Context, method, path string, body interface{}) (*Post, error) {
	var p Post
	if err := a.bare(ctx, method, path, body, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
