package api

import (
	"context"
	"net/http"
)

// ListComments returns an article's comment tree
func (a *API) ListComments(ctx context.Context, articleID string) ([]Comment, error) {
	var comments []Comment
	if _, err := a.call(ctx, http.MethodGet, "/articles/"+escape(articleID)+"/comments", nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment adds a comment or, with ParentComment set, a reply
func (a *API) CreateComment(ctx context.Context, articleID string, req CreateCommentRequest) (*Comment, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.comment(ctx, http.MethodPost, "/articles/"+escape(articleID)+"/comments", req)
}

// UpdateComment edits a comment's content
func (a *API) UpdateComment(ctx context.Context, id string, req UpdateCommentRequest) (*Comment, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.comment(ctx, http.MethodPut, "/comments/"+escape(id), req)
}

func (a *API) comment(ctx context.Context, method, path string, body interface{}) (*Comment, error) {
	var c Comment
	if _, err := a.call(ctx, method, path, body, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment deletes a comment. The server keeps a tombstone when the
// comment has replies.
func (a *API) DeleteComment(ctx context.Context, id string) error {
	_, err := a.call(ctx, http.MethodDelete, "/comments/"+escape(id), nil, nil, nil)
	return err
}

// ToggleCommentLike flips the viewer's like on a comment
func (a *API) ToggleCommentLike(ctx context.Context, id string) (*LikeState, error) {
	var st LikeState
	if _, err := a.call(ctx, http.MethodPut, "/comments/"+escape(id)+"/like", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
