package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"editorial_platform/internal/cache"
	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"
	"editorial_platform/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostService struct {
	posts map[int64]*models.Post
}

func (s *fakePostService) CreateOrUpdateDraft(_ context.Context, req *models.PostDraftRequest) (*models.Post, error) {
	if req.Title == "" {
		return nil, service.ErrInvalidInput
	}
	post := &models.Post{
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Status:  models.PostStatusUnderReview,
	}
	if post.ID == 0 {
		post.ID = 1
	}
	return post, nil
}

func (s *fakePostService) EditPost(_ context.Context, id int64, patch *models.PostPatchRequest) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakePostService) Publish(_ context.Context, postID int64) error {
	if _, ok := s.posts[postID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *fakePostService) GetPublished(_ context.Context, id int64) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok || p.Status != models.PostStatusPublished {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakePostService) GetPublishedPosts(_ context.Context) ([]*models.Post, error) {
	var res []*models.Post
	for _, p := range s.posts {
		if p.Status == models.PostStatusPublished {
			res = append(res, p)
		}
	}
	return res, nil
}

func (s *fakePostService) GetDraftPosts(_ context.Context) ([]*models.Post, error) {
	return nil, nil
}

func (s *fakePostService) GetPostSummary(_ context.Context, id int64) (*models.PostSummary, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.PostSummary{ID: p.ID, Title: p.Title, Content: p.Content, Author: p.Author}, nil
}

func newPostRouter(svc *fakePostService, c cache.Cache) http.Handler {
	h := NewPostHandler(svc, c, time.Minute)
	r := chi.NewRouter()
	r.Post("/api/posts", h.CreateOrUpdateDraft)
	r.Put("/api/posts/{id}", h.EditPost)
	r.Put("/api/posts/{id}/publish", h.Publish)
	r.Get("/api/posts/published", h.ListPublished)
	r.Get("/api/posts/published/{id}", h.GetPublished)
	r.Get("/api/posts/drafts", h.ListDrafts)
	r.Get("/api/posts/{id}", h.GetSummary)
	return r
}

func TestCreateDraftReturns201(t *testing.T) {
	router := newPostRouter(&fakePostService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"title": "Go Generics", "content": "long read", "author": "bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, models.PostStatusUnderReview, post.Status)
}

func TestUpdateDraftReturns200(t *testing.T) {
	router := newPostRouter(&fakePostService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"id": 5, "title": "Go Generics", "content": "long read"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDraftValidationError(t *testing.T) {
	router := newPostRouter(&fakePostService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"content": "no title"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPublishedCacheMissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewRedisCache(mr.Addr(), "", 0)
	defer c.Close()

	svc := &fakePostService{posts: map[int64]*models.Post{
		10: {ID: 10, Title: "Go Generics", Status: models.PostStatusPublished},
	}}
	router := newPostRouter(svc, c)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/published/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/published/10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, int64(10), post.ID)
}

func TestGetPublishedUnknownIs404(t *testing.T) {
	router := newPostRouter(&fakePostService{posts: map[int64]*models.Post{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/published/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPathIDRejectsGarbage(t *testing.T) {
	router := newPostRouter(&fakePostService{posts: map[int64]*models.Post{}}, nil)

	for _, path := range []string{
		"/api/posts/published/abc",
		"/api/posts/published/-1",
		"/api/posts/published/0",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}

func TestPublishReturns204(t *testing.T) {
	svc := &fakePostService{posts: map[int64]*models.Post{
		10: {ID: 10, Status: models.PostStatusUnderReview},
	}}
	router := newPostRouter(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/posts/10/publish", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
