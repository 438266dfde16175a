package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewService struct {
	submitID  int64
	submitErr error
	approved  []int64
	rejected  []int64
	deleted   []int64
	hasActive bool
	list      []models.ReviewWithPostDetails
	listErr   error
}

func (s *fakeReviewService) SubmitForReview(_ context.Context, postID int64, author string) (int64, error) {
	if s.submitErr != nil {
		return 0, s.submitErr
	}
	return s.submitID, nil
}

func (s *fakeReviewService) HasActiveReview(_ context.Context, postID int64) (bool, error) {
	return s.hasActive, nil
}

func (s *fakeReviewService) DeletePendingReview(_ context.Context, postID int64) error {
	s.deleted = append(s.deleted, postID)
	return nil
}

func (s *fakeReviewService) ApproveReview(_ context.Context, reviewID int64, reviewer string) error {
	if reviewID == 999 {
		return repository.ErrNotFound
	}
	s.approved = append(s.approved, reviewID)
	return nil
}

func (s *fakeReviewService) RejectReview(_ context.Context, reviewID int64, reviewer, remarks string) error {
	s.rejected = append(s.rejected, reviewID)
	return nil
}

func (s *fakeReviewService) ListWithPostDetails(_ context.Context) ([]models.ReviewWithPostDetails, error) {
	return s.list, s.listErr
}

func newReviewRouter(svc *fakeReviewService) http.Handler {
	h := NewReviewHandler(svc)
	r := chi.NewRouter()
	r.Post("/reviews/submit", h.Submit)
	r.Get("/reviews", h.List)
	r.Put("/reviews/{reviewId}/approve", h.Approve)
	r.Put("/reviews/{reviewId}/reject", h.Reject)
	r.Delete("/reviews/pending/{postId}", h.DeletePending)
	r.Get("/reviews/has-active-review", h.HasActiveReview)
	return r
}

func TestSubmitReturnsReviewID(t *testing.T) {
	svc := &fakeReviewService{submitID: 7}
	router := newReviewRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/reviews/submit",
		strings.NewReader(`{"post_id": 10, "author": "bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body["review_id"])
}

func TestSubmitRejectsBadJSON(t *testing.T) {
	router := newReviewRouter(&fakeReviewService{})

	req := httptest.NewRequest(http.MethodPost, "/reviews/submit", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveRequiresReviewer(t *testing.T) {
	svc := &fakeReviewService{}
	router := newReviewRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/reviews/5/approve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.approved)
}

func TestApproveHappyPath(t *testing.T) {
	svc := &fakeReviewService{}
	router := newReviewRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/reviews/5/approve?reviewer=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{5}, svc.approved)
}

func TestApproveUnknownReviewIs404(t *testing.T) {
	router := newReviewRouter(&fakeReviewService{})

	req := httptest.NewRequest(http.MethodPut, "/reviews/999/approve?reviewer=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectRequiresReviewerInBody(t *testing.T) {
	svc := &fakeReviewService{}
	router := newReviewRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/reviews/5/reject",
		strings.NewReader(`{"remarks": "too short"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.rejected)

	req = httptest.NewRequest(http.MethodPut, "/reviews/5/reject",
		strings.NewReader(`{"reviewer": "alice", "remarks": "too short"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{5}, svc.rejected)
}

func TestDeletePendingReturns204(t *testing.T) {
	svc := &fakeReviewService{}
	router := newReviewRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/reviews/pending/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{10}, svc.deleted)
}

func TestHasActiveReview(t *testing.T) {
	router := newReviewRouter(&fakeReviewService{hasActive: true})

	req := httptest.NewRequest(http.MethodGet, "/reviews/has-active-review?postId=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["has_active_review"])

	// без postId — 400
	req = httptest.NewRequest(http.MethodGet, "/reviews/has-active-review", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
