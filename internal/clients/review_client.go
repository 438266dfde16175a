package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"editorial_platform/internal/models"
)

// ReviewClient — то, что post-service зовёт у review-service.
type ReviewClient interface {
	Submit(ctx context.Context, postID int64, author string) (int64, error)
	DeletePending(ctx context.Context, postID int64) error
	HasActiveReview(ctx context.Context, postID int64) (bool, error)
}

type reviewClient struct {
	baseURL string
	http    *httpRequest
}

func NewReviewClient(baseURL string, retries int, timeout time.Duration) ReviewClient {
	return &reviewClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPRequest(retries, 100*time.Millisecond, timeout),
	}
}

func (c *reviewClient) Submit(ctx context.Context, postID int64, author string) (int64, error) {
	body, err := json.Marshal(models.ReviewRequest{PostID: postID, Author: author})
	if err != nil {
		return 0, fmt.Errorf("marshal review request: %w", err)
	}

	respBody, status, err := c.http.do(ctx, http.MethodPost, c.baseURL+"/reviews/submit", body, nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return 0, fmt.Errorf("submit review: unexpected status %d", status)
	}

	var resp struct {
		ReviewID int64 `json:"review_id"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal submit response: %w", err)
	}

	return resp.ReviewID, nil
}

func (c *reviewClient) DeletePending(ctx context.Context, postID int64) error {
	url := fmt.Sprintf("%s/reviews/pending/%d", c.baseURL, postID)

	_, status, err := c.http.do(ctx, http.MethodDelete, url, nil, nil)
	if err != nil {
		return err
	}
	// отсутствие pending review — не ошибка, идемпотентность
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("delete pending review: unexpected status %d", status)
	}

	return nil
}

func (c *reviewClient) HasActiveReview(ctx context.Context, postID int64) (bool, error) {
	url := fmt.Sprintf("%s/reviews/has-active-review?postId=%d", c.baseURL, postID)

	respBody, status, err := c.http.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("has active review: unexpected status %d", status)
	}

	var resp struct {
		HasActiveReview bool `json:"has_active_review"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false, fmt.Errorf("unmarshal has-active-review response: %w", err)
	}

	return resp.HasActiveReview, nil
}
