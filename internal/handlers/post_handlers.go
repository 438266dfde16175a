package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"editorial_platform/internal/cache"
	"editorial_platform/internal/metrics"
	"editorial_platform/internal/models"

	"github.com/go-chi/chi/v5"
)

// PostService описывает методы сервисного слоя, которые нужны хендлерам.
type PostService interface {
	CreateOrUpdateDraft(ctx context.Context, req *models.PostDraftRequest) (*models.Post, error)
	EditPost(ctx context.Context, id int64, patch *models.PostPatchRequest) (*models.Post, error)
	Publish(ctx context.Context, postID int64) error
	GetPublished(ctx context.Context, id int64) (*models.Post, error)
	GetPublishedPosts(ctx context.Context) ([]*models.Post, error)
	GetDraftPosts(ctx context.Context) ([]*models.Post, error)
	GetPostSummary(ctx context.Context, id int64) (*models.PostSummary, error)
}

type PostHandler struct {
	service PostService
	cache   cache.Cache
	ttl     time.Duration
}

func NewPostHandler(service PostService, c cache.Cache, ttl time.Duration) *PostHandler {
	return &PostHandler{
		service: service,
		cache:   c,
		ttl:     ttl,
	}
}

// POST /api/posts
// 201 (новый) / 200 (обновление): пост
// 400: invalid input
// 404: id указан, но поста нет
func (h *PostHandler) CreateOrUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req models.PostDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	isNew := req.ID <= 0

	post, err := h.service.CreateOrUpdateDraft(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, post)
}

// PUT /api/posts/{id}
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.PostPatchRequest
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	post, err := h.service.EditPost(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// PUT /api/posts/{id}/publish — зовёт только review-service при approve.
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Publish(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/posts/published/{id}
// 404 и для отсутствующего, и для неопубликованного поста.
func (h *PostHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// 1) cache lookup
	if h.cache != nil {
		key := cache.PublishedPostKey(id)
		if b, ok, err := h.cache.Get(r.Context(), key); err == nil && ok {
			metrics.IncRedisHit()
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, b)
			return
		}
	}

	// 2) DB via service
	post, err := h.service.GetPublished(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, _ := json.Marshal(post)

	// 3) cache store
	if h.cache != nil {
		_ = h.cache.Set(r.Context(), cache.PublishedPostKey(id), b, h.ttl)
	}

	metrics.IncRedisMiss()
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, b)
}

// GET /api/posts/published
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if b, ok, err := h.cache.Get(r.Context(), cache.PublishedListKey()); err == nil && ok {
			metrics.IncRedisHit()
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, b)
			return
		}
	}

	posts, err := h.service.GetPublishedPosts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, _ := json.Marshal(posts)

	if h.cache != nil {
		_ = h.cache.Set(r.Context(), cache.PublishedListKey(), b, h.ttl)
	}

	metrics.IncRedisMiss()
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, b)
}

// GET /api/posts/drafts — только редактор.
func (h *PostHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetDraftPosts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// GET /api/posts/{id} — summary для обогащения, только редактор.
func (h *PostHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.service.GetPostSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
