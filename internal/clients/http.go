package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

// httpRequest — общий ретраящий клиент для межсервисных вызовов.
type httpRequest struct {
	client *httpclient.Client
}

func newHTTPRequest(retries int, sleepBetweenRetry, timeout time.Duration) *httpRequest {
	if retries <= 0 {
		retries = 3
	}
	if sleepBetweenRetry <= 0 {
		sleepBetweenRetry = 100 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	backoff := heimdall.NewConstantBackoff(sleepBetweenRetry, 5*time.Millisecond)
	retrier := heimdall.NewRetrier(backoff)

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetrier(retrier),
		httpclient.WithRetryCount(retries),
	)

	return &httpRequest{client: client}
}

// do возвращает тело и статус; ошибка — только транспортная.
func (r *httpRequest) do(ctx context.Context, method, url string, reqBody []byte, headers map[string]string) ([]byte, int, error) {
	var body io.Reader
	if reqBody != nil {
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
