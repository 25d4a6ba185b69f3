package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListArticles returns one page of published articles
func (a *API) ListArticles(ctx context.Context, p ArticleParams) (*ArticleList, error) {
	if err := ValidateRequest(p); err != nil {
		return nil, err
	}

	q := pageQuery(p.Page, p.Limit)
	for k, v := range map[string]string{"tag": p.Tag, "category": p.Category, "search": p.Search, "author": p.Author} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return a.articleList(ctx, "/articles", q)
}

// MyArticles returns the signed-in user's articles, drafts included
func (a *API) MyArticles(ctx context.Context) (*ArticleList, error) {
	return a.articleList(ctx, "/articles/me/articles", nil)
}

// FeaturedArticles returns the featured articles
func (a *API) FeaturedArticles(ctx context.Context) (*ArticleList, error) {
	return a.articleList(ctx, "/articles/featured", nil)
}

// AuthorArticles returns an author's published articles
func (a *API) AuthorArticles(ctx context.Context, authorID string, page, limit int) (*ArticleList, error) {
	return a.articleList(ctx, "/articles/author/"+escape(authorID), pageQuery(page, limit))
}

func (a *API) articleList(ctx context.Context, path string, q url.Values) (*ArticleList, error) {
	list := &ArticleList{}
	env, err := a.call(ctx, http.MethodGet, path, nil, q, &list.Articles)
	if err != nil {
		return nil, err
	}
	list.Page = env.page()
	return list, nil
}

// GetArticle fetches an article by slug
func (a *API) GetArticle(ctx context.Context, slug string) (*Article, error) {
	return a.article(ctx, http.MethodGet, "/articles/"+escape(slug), nil)
}

// GetArticleByID fetches an article by id
func (a *API) GetArticleByID(ctx context.Context, id string) (*Article, error) {
	return a.article(ctx, http.MethodGet, "/articles/id/"+escape(id), nil)
}

// CreateArticle publishes or drafts a new article
func (a *API) CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.article(ctx, http.MethodPost, "/articles", req)
}

// UpdateArticle edits an article
func (a *API) UpdateArticle(ctx context.Context, id string, req UpdateArticleRequest) (*Article, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return a.article(ctx, http.MethodPut, "/articles/"+escape(id), req)
}

func (a *API) article(ctx context.Context, method, path string, body interface{}) (*Article, error) {
	var art Article
	if _, err := a.call(ctx, method, path, body, nil, &art); err != nil {
		return nil, err
	}
	return &art, nil
}

// DeleteArticle removes an article
func (a *API) DeleteArticle(ctx context.Context, id string) error {
	_, err := a.call(ctx, http.MethodDelete, "/articles/"+escape(id), nil, nil, nil)
	return err
}

// ToggleArticleLike flips the viewer's like and returns the server's view
func (a *API) ToggleArticleLike(ctx context.Context, id string) (*LikeState, error) {
	var st LikeState
	if _, err := a.call(ctx, http.MethodPut, "/articles/"+escape(id)+"/like", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
