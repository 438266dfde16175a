package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"editorial_platform/internal/auth"
	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"
)

// PostClient — то, что review-service и comment-service зовут у post-service.
type PostClient interface {
	Publish(ctx context.Context, postID int64) error
	GetPostSummary(ctx context.Context, postID int64) (*models.PostSummary, error)
	GetPublished(ctx context.Context, postID int64) (*models.Post, error)
}

type postClient struct {
	baseURL string
	http    *httpRequest
}

func NewPostClient(baseURL string, retries int, timeout time.Duration) PostClient {
	return &postClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPRequest(retries, 100*time.Millisecond, timeout),
	}
}

func (c *postClient) Publish(ctx context.Context, postID int64) error {
	url := fmt.Sprintf("%s/api/posts/%d/publish", c.baseURL, postID)

	_, status, err := c.http.do(ctx, http.MethodPut, url, nil, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return repository.ErrNotFound
	default:
		return fmt.Errorf("publish post: unexpected status %d", status)
	}
}

// GetPostSummary — для обогащения списка ревью; зовётся от имени редактора.
func (c *postClient) GetPostSummary(ctx context.Context, postID int64) (*models.PostSummary, error) {
	url := fmt.Sprintf("%s/api/posts/%d", c.baseURL, postID)

	respBody, status, err := c.http.do(ctx, http.MethodGet, url, nil, map[string]string{
		auth.HeaderUserRole: string(auth.RoleEditor),
	})
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, repository.ErrNotFound
	default:
		return nil, fmt.Errorf("get post summary: unexpected status %d", status)
	}

	var summary models.PostSummary
	if err := json.Unmarshal(respBody, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal post summary: %w", err)
	}

	return &summary, nil
}

func (c *postClient) GetPublished(ctx context.Context, postID int64) (*models.Post, error) {
	url := fmt.Sprintf("%s/api/posts/published/%d", c.baseURL, postID)

	respBody, status, err := c.http.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, repository.ErrNotFound
	default:
		return nil, fmt.Errorf("get published post: unexpected status %d", status)
	}

	var post models.Post
	if err := json.Unmarshal(respBody, &post); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}

	return &post, nil
}
