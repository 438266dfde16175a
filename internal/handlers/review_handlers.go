package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"editorial_platform/internal/models"
)

// ReviewService описывает методы workflow-движка, которые нужны хендлерам.
type ReviewService interface {
	SubmitForReview(ctx context.Context, postID int64, author string) (int64, error)
	HasActiveReview(ctx context.Context, postID int64) (bool, error)
	DeletePendingReview(ctx context.Context, postID int64) error
	ApproveReview(ctx context.Context, reviewID int64, reviewer string) error
	RejectReview(ctx context.Context, reviewID int64, reviewer, remarks string) error
	ListWithPostDetails(ctx context.Context) ([]models.ReviewWithPostDetails, error)
}

type ReviewHandler struct {
	service ReviewService
}

func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// POST /reviews/submit
// 201: { "review_id": int }
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	id, err := h.service.SubmitForReview(r.Context(), req.PostID, req.Author)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"review_id": id})
}

// GET /reviews — только редактор.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListWithPostDetails(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// PUT /reviews/{reviewId}/approve?reviewer= — только редактор.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}

	reviewer := strings.TrimSpace(r.URL.Query().Get("reviewer"))
	if reviewer == "" {
		writeError(w, http.StatusBadRequest, "reviewer is required")
		return
	}

	if err := h.service.ApproveReview(r.Context(), reviewID, reviewer); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// PUT /reviews/{reviewId}/reject — только редактор.
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}

	var req models.RejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Reviewer) == "" {
		writeError(w, http.StatusBadRequest, "reviewer is required")
		return
	}

	if err := h.service.RejectReview(r.Context(), reviewID, req.Reviewer, req.Remarks); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// DELETE /reviews/pending/{postId} — идемпотентно, 204 и когда удалять нечего.
func (h *ReviewHandler) DeletePending(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId")
	if !ok {
		return
	}

	if err := h.service.DeletePendingReview(r.Context(), postID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /reviews/has-active-review?postId=
func (h *ReviewHandler) HasActiveReview(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("postId"))
	postID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, http.StatusBadRequest, "postId must be a positive integer")
		return
	}

	has, err := h.service.HasActiveReview(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"has_active_review": has})
}
