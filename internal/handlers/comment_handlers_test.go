package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type fakeCommentService struct {
	addErr  error
	deleted []int64
}

func (s *fakeCommentService) AddComment(_ context.Context, req *models.CommentRequest) (*models.Comment, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &models.Comment{ID: 1, PostID: req.PostID, Author: req.Author, Content: req.Content}, nil
}

func (s *fakeCommentService) GetCommentsForPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	return []*models.Comment{{ID: 1, PostID: postID}}, nil
}

func (s *fakeCommentService) EditComment(_ context.Context, id int64, content string) (*models.Comment, error) {
	return &models.Comment{ID: id, Content: content}, nil
}

func (s *fakeCommentService) DeleteComment(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newCommentRouter(svc *fakeCommentService) http.Handler {
	h := NewCommentHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/comments", h.Add)
	r.Get("/api/comments/post/{postId}", h.ListForPost)
	r.Put("/api/comments/{id}", h.Edit)
	r.Delete("/api/comments/{id}", h.Delete)
	return r
}

func TestAddCommentReturns201(t *testing.T) {
	router := newCommentRouter(&fakeCommentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/comments",
		strings.NewReader(`{"post_id": 10, "author": "dave", "content": "nice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddCommentUnpublishedPostIs404(t *testing.T) {
	router := newCommentRouter(&fakeCommentService{addErr: repository.ErrNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/comments",
		strings.NewReader(`{"post_id": 10, "author": "dave", "content": "nice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCommentReturns204(t *testing.T) {
	svc := &fakeCommentService{}
	router := newCommentRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/comments/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{1}, svc.deleted)
}
