package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freqsync/freqsync/internal/domain"
)

const (
	// DefaultBaseURL is the public API endpoint
	DefaultBaseURL = "https://api.notion.com/v1"

	// apiVersion pins the wire format
	apiVersion = "2022-06-28"

	// requestsPerSecond matches the documented integration rate limit
	requestsPerSecond = 3
)

// client is the low-level HTTP layer shared by the adapter methods.
type client struct {
	httpClient *http.Client
	token      string
	baseURL    string
	retrier    *Retrier
	limiter    *TokenBucket
}

// apiError is the error body the API returns on non-2xx responses
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newClient(token, baseURL string, timeout time.Duration, maxRetries int) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		retrier:    NewRetrier(RetrierOptions{MaxRetries: maxRetries}),
		limiter:    NewTokenBucket(requestsPerSecond, requestsPerSecond),
	}
}

// do performs one API call with rate limiting and retry, decoding the JSON
// response into out when non-nil.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	return c.retrier.Retry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.doOnce(ctx, method, path, body, out)
	})
}

func (c *client) doOnce(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransportError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &apiErr)

		cause := fmt.Errorf("HTTP %d", resp.StatusCode)
		if apiErr.Message != "" {
			cause = fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Message)
		}

		if ShouldRetryStatus(resp.StatusCode) {
			return &domain.RetryableError{
				Err:        domain.NewTransportError(endpoint, resp.StatusCode, cause),
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return domain.NewTransportError(endpoint, resp.StatusCode, cause)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportError(endpoint, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
