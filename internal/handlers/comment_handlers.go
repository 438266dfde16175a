package handlers

import (
	"context"
	"net/http"

	"editorial_platform/internal/models"
)

type CommentService interface {
	AddComment(ctx context.Context, req *models.CommentRequest) (*models.Comment, error)
	GetCommentsForPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	EditComment(ctx context.Context, id int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type CommentHandler struct {
	service CommentService
}

func NewCommentHandler(service CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// POST /api/comments
// 404, если пост не опубликован или не существует.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	comment, err := h.service.AddComment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// GET /api/comments/post/{postId}
func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId")
	if !ok {
		return
	}

	comments, err := h.service.GetCommentsForPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// PUT /api/comments/{id}
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	comment, err := h.service.EditComment(r.Context(), id, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteComment(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
