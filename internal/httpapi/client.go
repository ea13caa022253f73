// Package httpapi is the HTTP plumbing shared by the remote data-source
// clients: client-side rate limiting, capped retries with exponential
// backoff, and typed status errors.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client wraps an http.Client with a rate limiter and retry policy.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// NewClient creates a rate-limited HTTP client. rateDelay is the minimum
// delay between requests.
func NewClient(userAgent string, rateDelay, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Every(rateDelay), 1),
		userAgent:   userAgent,
	}
}

// StatusError reports a non-200 response. 429 is retried internally and only
// surfaces as a plain error after the retry budget is spent.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// Get performs a GET with rate limiting and retries. Transport failures and
// HTTP 429 are retried with exponential backoff; any other non-200 status is
// returned immediately as a *StatusError with the response body attached.
func (c *Client) Get(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			if attempt < maxRetries {
				if !sleepCtx(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("read response body: %w", readErr)
			}
			return body, nil

		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < maxRetries {
				if !sleepCtx(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr

		default:
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: requestURL, Body: body}
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
