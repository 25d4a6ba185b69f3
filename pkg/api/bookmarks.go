package api

import (
	"context"
	"net/http"
)

// ToggleBookmark flips the viewer's bookmark on an article
func (a *API) ToggleBookmark(ctx context.Context, articleID string) (*BookmarkState, error) {
	return a.bookmarkState(ctx, http.MethodPut, "/articles/"+escape(articleID)+"/bookmark")
}

// IsBookmarked reports whether the viewer bookmarked an article
func (a *API) IsBookmarked(ctx context.Context, articleID string) (*BookmarkState, error) {
	return a.bookmarkState(ctx, http.MethodGet, "/articles/"+escape(articleID)+"/is-bookmarked")
}

func (a *API) bookmarkState(ctx context.Context, method, path string) (*BookmarkState, error) {
	var st BookmarkState
	if _, err := a.call(ctx, method, path, nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListBookmarks returns one page of the viewer's bookmarked articles
func (a *API) ListBookmarks(ctx context.Context, page, limit int) (*ArticleList, error) {
	return a.articleList(ctx, "/bookmarks", pageQuery(page, limit))
}

// RemoveBookmark deletes a bookmark by article id
func (a *API) RemoveBookmark(ctx context.Context, articleID string) error {
	_, err := a.call(ctx, http.MethodDelete, "/bookmarks/"+escape(articleID), nil, nil, nil)
	return err
}
