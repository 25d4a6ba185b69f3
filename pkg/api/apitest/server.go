// Package apitest runs an in-memory blogging server behind httptest for
// client-side tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zfogg/inkwell/pkg/api"
)

const secret = "apitest-secret"

type failure struct {
	status  int
	message string
}

// Server is a fake of the REST API. Routes live under /api.
type Server struct {
	*httptest.Server
	Router *gin.Engine

	mu        sync.Mutex
	seq       int
	users     map[string]*api.User
	passwords map[string]string
	articles  map[string]*api.Article
	comments  map[string]*api.Comment
	bookmarks map[string]map[string]time.Time
	follows   map[string]map[string]bool
	posts     map[string]*api.Post
	upvoters  map[string]map[string]bool
	failures  map[string][]failure
	holds     map[string]chan struct{}
	calls     []string
}

// NewServer starts a server that is closed when t finishes
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		Router:    gin.New(),
		users:     map[string]*api.User{},
		passwords: map[string]string{},
		articles:  map[string]*api.Article{},
		comments:  map[string]*api.Comment{},
		bookmarks: map[string]map[string]time.Time{},
		follows:   map[string]map[string]bool{},
		posts:     map[string]*api.Post{},
		upvoters:  map[string]map[string]bool{},
		failures:  map[string][]failure{},
		holds:     map[string]chan struct{}{},
	}
	s.routes()
	s.Server = httptest.NewServer(s.Router)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value for api.base_url
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Fail makes the next request to route answer with status and message.
// route is the gin pattern without the /api prefix, e.g. "PUT /articles/:id/like".
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status, message})
}

// Hold blocks requests to route until the returned func is called
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns the routes hit so far, in order
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

// AddUser registers an account and returns it with a valid token
func (s *Server) AddUser(name, email, password string) (api.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUser(name, email, password)
	return *u, sign(u.ID)
}

func (s *Server) addUser(name, email, password string) *api.User {
	now := time.Now().UTC()
	u := &api.User{ID: s.nextID("u"), Name: name, Email: email, Role: "user", CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	s.passwords[email] = password
	return u
}

// AddArticle publishes an article by authorID
func (s *Server) AddArticle(authorID, title string, tags ...string) api.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	a := &api.Article{
		ID:        s.nextID("a"),
		Title:     title,
		Slug:      slugify(title),
		Content:   []byte(`{"blocks":[]}`),
		Author:    s.author(authorID),
		Status:    "published",
		Tags:      tags,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.articles[a.ID] = a
	return *a
}

// AddComment stores a comment or reply on an article
func (s *Server) AddComment(articleID, authorID, content, parentID string) api.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addComment(articleID, authorID, content, parentID)
}

func (s *Server) addComment(articleID, authorID, content, parentID string) *api.Comment {
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	c := &api.Comment{
		ID:        s.nextID("c"),
		Content:   content,
		Article:   articleID,
		Author:    s.author(authorID),
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parentID != "" {
		p := parentID
		c.ParentComment = &p
	}
	s.comments[c.ID] = c
	if a, ok := s.articles[articleID]; ok {
		a.CommentsCount++
	}
	return c
}

// AddPost creates a post by authorID
func (s *Server) AddPost(authorID, title, content string) api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := &api.Post{ID: s.nextID("p"), Title: title, Content: content, Author: api.Author{ID: authorID}, Comments: []api.PostComment{}, CreatedAt: now, UpdatedAt: now}
	s.posts[p.ID] = p
	return *p
}

// Article returns the server's copy of an article
func (s *Server) Article(id string) (api.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return api.Article{}, false
	}
	return *a, true
}

// Bookmarked reports whether userID bookmarked articleID
func (s *Server) Bookmarked(userID, articleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bookmarks[userID][articleID]
	return ok
}

func (s *Server) author(id string) api.Author {
	if u, ok := s.users[id]; ok {
		return api.Author{ID: u.ID, Name: u.Name, Email: u.Email, FollowersCount: u.FollowersCount}
	}
	return api.Author{ID: id}
}

func sign(userID string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	s, _ := tok.SignedString([]byte(secret))
	return s
}

func slugify(title string) string {
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, title), "-")
}

func (s *Server) routes() {
	r := s.Router.Group("/api")
	r.Use(s.intercept)

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)
	r.GET("/auth/me", s.auth, s.me)
	r.PUT("/auth/updatedetails", s.auth, s.updateDetails)

	r.GET("/articles", s.listArticles)
	r.GET("/articles/featured", s.featured)
	r.GET("/articles/me/articles", s.auth, s.myArticles)
	r.GET("/articles/author/:id", s.authorArticles)
	r.GET("/articles/id/:id", s.getArticle)
	r.GET("/articles/:id", s.getArticleBySlug)
	r.POST("/articles", s.auth, s.createArticle)
	r.PUT("/articles/:id", s.auth, s.updateArticle)
	r.DELETE("/articles/:id", s.auth, s.deleteArticle)
	r.PUT("/articles/:id/like", s.auth, s.likeArticle)
	r.GET("/articles/:id/comments", s.listComments)
	r.POST("/articles/:id/comments", s.auth, s.createComment)
	r.PUT("/articles/:id/bookmark", s.auth, s.toggleBookmark)
	r.GET("/articles/:id/is-bookmarked", s.auth, s.isBookmarked)

	r.PUT("/comments/:id", s.auth, s.updateComment)
	r.DELETE("/comments/:id", s.auth, s.deleteComment)
	r.PUT("/comments/:id/like", s.auth, s.likeComment)

	r.GET("/bookmarks", s.auth, s.listBookmarks)
	r.DELETE("/bookmarks/:id", s.auth, s.removeBookmark)

	r.GET("/users/:id", s.getUser)
	r.PUT("/users/:id/follow", s.auth, s.follow)
	r.PUT("/users/:id/unfollow", s.auth, s.unfollow)
	r.GET("/users/:id/followers", s.followers)
	r.GET("/users/:id/following", s.following)
	r.GET("/users/:id/is-following", s.auth, s.isFollowing)

	r.GET("/posts", s.listPosts)
	r.GET("/posts/:id", s.getPost)
	r.POST("/posts", s.auth, s.createPost)
	r.PATCH("/posts/:id", s.auth, s.updatePost)
	r.DELETE("/posts/:id", s.auth, s.deletePost)
	r.POST("/posts/upvote/:id", s.auth, s.upvotePost)
	r.POST("/posts/:id/comments", s.auth, s.addPostComment)
	r.PUT("/posts/:id/comments/:cid", s.auth, s.updatePostComment)
	r.DELETE("/posts/:id/comments/:cid", s.auth, s.deletePostComment)
}

// intercept records the call, waits on holds and applies injected failures
func (s *Server) intercept(c *gin.Context) {
	route := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api")

	s.mu.Lock()
	s.calls = append(s.calls, route)
	hold := s.holds[route]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	s.mu.Lock()
	var f *failure
	if q := s.failures[route]; len(q) > 0 {
		f = &q[0]
		s.failures[route] = q[1:]
	}
	s.mu.Unlock()

	if f != nil {
		c.AbortWithStatusJSON(f.status, gin.H{"success": false, "message": f.message})
		return
	}
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return []byte(secret), nil })
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
		return
	}
	sub, _ := claims.GetSubject()
	c.Set("user_id", sub)
	c.Next()
}

func viewer(c *gin.Context) string {
	return c.GetString("user_id")
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func paginate[T any](c *gin.Context, items []T) ([]T, gin.H) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], gin.H{"currentPage": page, "totalPages": (total + limit - 1) / limit, "total": total}
}

func okPage[T any](c *gin.Context, items []T) {
	pageItems, meta := paginate(c, items)
	meta["success"] = true
	meta["data"] = pageItems
	c.JSON(http.StatusOK, meta)
}

// auth

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "Please provide name, email and password")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.passwords[req.Email]; exists {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}
	u := s.addUser(req.Name, req.Email, req.Password)
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": sign(u.ID), "user": u})
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	pw, exists := s.passwords[req.Email]
	if !exists || pw != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}
	for _, u := range s.users {
		if u.Email == req.Email {
			c.JSON(http.StatusOK, gin.H{"success": true, "token": sign(u.ID), "user": u})
			return
		}
	}
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[viewer(c)]
	if !exists {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	ok(c, u)
}

func (s *Server) updateDetails(c *gin.Context) {
	var req api.UpdateProfileRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[viewer(c)]
	if !exists {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	ok(c, u)
}

// articles

func (s *Server) sortedArticles(keep func(*api.Article) bool) []api.Article {
	out := []api.Article{}
	for _, a := range s.articles {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Server) listArticles(c *gin.Context) {
	tag, category, search, author := c.Query("tag"), c.Query("category"), strings.ToLower(c.Query("search")), c.Query("author")
	s.mu.Lock()
	defer s.mu.Unlock()
	okPage(c, s.sortedArticles(func(a *api.Article) bool {
		if a.Status != "published" {
			return false
		}
		if tag != "" && !contains(a.Tags, tag) {
			return false
		}
		if category != "" && a.Category != category {
			return false
		}
		if author != "" && a.Author.ID != author {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(a.Title), search)
	}))
}

func (s *Server) featured(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.sortedArticles(func(a *api.Article) bool { return a.IsFeatured }))
}

func (s *Server) myArticles(c *gin.Context) {
	me := viewer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.sortedArticles(func(a *api.Article) bool { return a.Author.ID == me }))
}

func (s *Server) authorArticles(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	okPage(c, s.sortedArticles(func(a *api.Article) bool { return a.Author.ID == id && a.Status == "published" }))
}

func (s *Server) getArticle(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.articles[c.Param("id")]
	if !exists {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	ok(c, a)
}

func (s *Server) getArticleBySlug(c *gin.Context) {
	slug := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.articles {
		if a.Slug == slug {
			a.Views++
			ok(c, a)
			return
		}
	}
	fail(c, http.StatusNotFound, "Article not found")
}

func (s *Server) createArticle(c *gin.Context) {
	var req api.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		fail(c, http.StatusBadRequest, "Please add a title")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = "draft"
	}
	a := &api.Article{
		ID: s.nextID("a"), Title: req.Title, Slug: slugify(req.Title), Content: req.Content,
		Author: s.author(viewer(c)), Status: status, Tags: req.Tags, Category: req.Category,
		Likes: []string{}, CreatedAt: now, UpdatedAt: now,
	}
	s.articles[a.ID] = a
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": a})
}

func (s *Server) ownArticle(c *gin.Context) (*api.Article, bool) {
	a, exists := s.articles[c.Param("id")]
	if !exists {
		fail(c, http.StatusNotFound, "Article not found")
		return nil, false
	}
	if a.Author.ID != viewer(c) {
		fail(c, http.StatusForbidden, "Not authorized to modify this article")
		return nil, false
	}
	return a, true
}

func (s *Server) updateArticle(c *gin.Context) {
	var req api.UpdateArticleRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, allowed := s.ownArticle(c)
	if !allowed {
		return
	}
	if req.Title != "" {
		a.Title = req.Title
	}
	if len(req.Content) > 0 {
		a.Content = req.Content
	}
	if req.Status != "" {
		a.Status = req.Status
	}
	if req.Tags != nil {
		a.Tags = req.Tags
	}
	a.UpdatedAt = time.Now().UTC()
	ok(c, a)
}

func (s *Server) deleteArticle(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, allowed := s.ownArticle(c)
	if !allowed {
		return
	}
	delete(s.articles, a.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article deleted"})
}

func (s *Server) likeArticle(c *gin.Context) {
	me := viewer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, exists := s.articles[c.Param("id")]
	if !exists {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	var liked bool
	a.Likes, liked = toggle(a.Likes, me)
	a.LikesCount = len(a.Likes)
	ok(c, api.LikeState{LikesCount: a.LikesCount, IsLiked: liked})
}

// comments

func (s *Server) listComments(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()

	var top []api.Comment
	replies := map[string][]api.Comment{}
	for _, cm := range s.comments {
		if cm.Article != id {
			continue
		}
		if cm.ParentComment == nil {
			top = append(top, *cm)
		} else {
			replies[*cm.ParentComment] = append(replies[*cm.ParentComment], *cm)
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].CreatedAt.After(top[j].CreatedAt) })
	for i := range top {
		rs := replies[top[i].ID]
		sort.Slice(rs, func(a, b int) bool { return rs[a].CreatedAt.Before(rs[b].CreatedAt) })
		top[i].Replies = rs
		top[i].RepliesCount = len(rs)
	}
	if top == nil {
		top = []api.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(top), "data": top})
}

func (s *Server) createComment(c *gin.Context) {
	var req api.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "Comment content is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.articles[c.Param("id")]; !exists {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	if req.ParentComment != "" {
		p, exists := s.comments[req.ParentComment]
		if !exists {
			fail(c, http.StatusNotFound, "Parent comment not found")
			return
		}
		if p.ParentComment != nil {
			fail(c, http.StatusBadRequest, "Cannot reply to a reply")
			return
		}
	}
	cm := s.addComment(c.Param("id"), viewer(c), req.Content, req.ParentComment)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": cm})
}

func (s *Server) ownComment(c *gin.Context) (*api.Comment, bool) {
	cm, exists := s.comments[c.Param("id")]
	if !exists || cm.IsDeleted {
		fail(c, http.StatusNotFound, "Comment not found")
		return nil, false
	}
	if cm.Author.ID != viewer(c) {
		fail(c, http.StatusForbidden, "Not authorized to modify this comment")
		return nil, false
	}
	return cm, true
}

func (s *Server) updateComment(c *gin.Context) {
	var req api.UpdateCommentRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, allowed := s.ownComment(c)
	if !allowed {
		return
	}
	cm.Content = req.Content
	cm.UpdatedAt = time.Now().UTC()
	ok(c, cm)
}

func (s *Server) deleteComment(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, allowed := s.ownComment(c)
	if !allowed {
		return
	}
	hasReplies := false
	for _, other := range s.comments {
		if other.ParentComment != nil && *other.ParentComment == cm.ID {
			hasReplies = true
			break
		}
	}
	if hasReplies {
		cm.IsDeleted = true
		cm.Content = "[Comment deleted]"
	} else {
		delete(s.comments, cm.ID)
		if a, exists := s.articles[cm.Article]; exists {
			a.CommentsCount--
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}

func (s *Server) likeComment(c *gin.Context) {
	me := viewer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, exists := s.comments[c.Param("id")]
	if !exists || cm.IsDeleted {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}
	var liked bool
	cm.Likes, liked = toggle(cm.Likes, me)
	cm.LikesCount = len(cm.Likes)
	ok(c, api.LikeState{LikesCount: cm.LikesCount, IsLiked: liked})
}

// bookmarks

func (s *Server) toggleBookmark(c *gin.Context) {
	me, id := viewer(c), c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.articles[id]; !exists {
		fail(c, http.StatusNotFound, "Article not found")
		return
	}
	if s.bookmarks[me] == nil {
		s.bookmarks[me] = map[string]time.Time{}
	}
	if _, marked := s.bookmarks[me][id]; marked {
		delete(s.bookmarks[me], id)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bookmark removed", "data": gin.H{"isBookmarked": false}})
		return
	}
	s.bookmarks[me][id] = time.Now()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article bookmarked", "data": gin.H{"isBookmarked": true}})
}

func (s *Server) isBookmarked(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, marked := s.bookmarks[viewer(c)][c.Param("id")]
	ok(c, gin.H{"isBookmarked": marked})
}

func (s *Server) listBookmarks(c *gin.Context) {
	me := viewer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	type marked struct {
		at time.Time
		a  api.Article
	}
	var all []marked
	for id, at := range s.bookmarks[me] {
		if a, exists := s.articles[id]; exists {
			all = append(all, marked{at, *a})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.After(all[j].at) })
	out := make([]api.Article, 0, len(all))
	for _, m := range all {
		out = append(out, m.a)
	}
	okPage(c, out)
}

func (s *Server) removeBookmark(c *gin.Context) {
	me, id := viewer(c), c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, marked := s.bookmarks[me][id]; !marked {
		fail(c, http.StatusNotFound, "Bookmark not found")
		return
	}
	delete(s.bookmarks[me], id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bookmark removed"})
}

// users and follows

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[c.Param("id")]
	if !exists {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	ok(c, u)
}

func (s *Server) follow(c *gin.Context)   { s.setFollow(c, true) }
func (s *Server) unfollow(c *gin.Context) { s.setFollow(c, false) }

func (s *Server) setFollow(c *gin.Context, on bool) {
	me, id := viewer(c), c.Param("id")
	if me == id {
		fail(c, http.StatusBadRequest, "You cannot follow yourself")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	target, exists := s.users[id]
	if !exists {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if s.follows[me] == nil {
		s.follows[me] = map[string]bool{}
	}
	if s.follows[me][id] == on {
		if on {
			fail(c, http.StatusBadRequest, "Already following this user")
		} else {
			fail(c, http.StatusBadRequest, "You are not following this user")
		}
		return
	}
	delta := 1
	if on {
		s.follows[me][id] = true
	} else {
		delete(s.follows[me], id)
		delta = -1
	}
	target.FollowersCount += delta
	following := 0
	if self, exists := s.users[me]; exists {
		self.FollowingCount += delta
		following = self.FollowingCount
	}
	msg := "User followed"
	if !on {
		msg = "User unfollowed"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "data": api.FollowCounts{
		FollowersCount: target.FollowersCount,
		FollowingCount: following,
	}})
}

func (s *Server) followers(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.FollowUser{}
	for who, set := range s.follows {
		if set[id] {
			out = append(out, s.followUser(who))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(out), "data": out})
}

func (s *Server) following(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.FollowUser{}
	for who := range s.follows[id] {
		out = append(out, s.followUser(who))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(out), "data": out})
}

func (s *Server) followUser(id string) api.FollowUser {
	u := s.users[id]
	if u == nil {
		return api.FollowUser{ID: id}
	}
	return api.FollowUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *Server) isFollowing(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, gin.H{"isFollowing": s.follows[viewer(c)][c.Param("id")]})
}

// posts answer without the envelope

func (s *Server) listPosts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]api.Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	page, meta := paginate(c, all)
	c.JSON(http.StatusOK, gin.H{"posts": page, "hasMore": meta["currentPage"].(int) < meta["totalPages"].(int)})
}

func (s *Server) findPost(c *gin.Context) (*api.Post, bool) {
	p, exists := s.posts[c.Param("id")]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return nil, false
	}
	return p, true
}

func (s *Server) getPost(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, exists := s.findPost(c); exists {
		c.JSON(http.StatusOK, p)
	}
}

func (s *Server) createPost(c *gin.Context) {
	var req api.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title and content are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := &api.Post{ID: s.nextID("p"), Title: req.Title, Content: req.Content, Author: api.Author{ID: viewer(c)}, Comments: []api.PostComment{}, CreatedAt: now, UpdatedAt: now}
	s.posts[p.ID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updatePost(c *gin.Context) {
	var req api.UpdatePostRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.findPost(c)
	if !exists {
		return
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Content != "" {
		p.Content = req.Content
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePost(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.findPost(c)
	if !exists {
		return
	}
	delete(s.posts, p.ID)
	c.JSON(http.StatusOK, gin.H{"id": p.ID})
}

func (s *Server) upvotePost(c *gin.Context) {
	me := viewer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.findPost(c)
	if !exists {
		return
	}
	if s.upvoters[p.ID] == nil {
		s.upvoters[p.ID] = map[string]bool{}
	}
	if s.upvoters[p.ID][me] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already upvoted"})
		return
	}
	s.upvoters[p.ID][me] = true
	p.Upvotes++
	c.JSON(http.StatusOK, p)
}

func (s *Server) addPostComment(c *gin.Context) {
	var req api.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment text is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.findPost(c)
	if !exists {
		return
	}
	a := s.author(viewer(c))
	p.Comments = append(p.Comments, api.PostComment{
		ID:        s.nextID("pc"),
		User:      api.Author{ID: a.ID, Name: a.Name},
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	})
	c.JSON(http.StatusCreated, p)
}

func (s *Server) postComment(c *gin.Context) (*api.Post, int, bool) {
	p, exists := s.findPost(c)
	if !exists {
		return nil, 0, false
	}
	for i, pc := range p.Comments {
		if pc.ID == c.Param("cid") {
			if pc.User.ID != viewer(c) {
				c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
				return nil, 0, false
			}
			return p, i, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
	return nil, 0, false
}

func (s *Server) updatePostComment(c *gin.Context) {
	var req api.PostCommentRequest
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i, found := s.postComment(c)
	if !found {
		return
	}
	p.Comments[i].Text = req.Text
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePostComment(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i, found := s.postComment(c)
	if !found {
		return
	}
	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	c.JSON(http.StatusOK, p)
}

func toggle(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...), false
		}
	}
	return append(ids, id), true
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
