// Package client is the Go SDK for the competiscope analytics backend.  It
// wraps the backend's REST surface with retries, typed errors, and lazy
// sub-clients per resource area.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/competiscope/pkg/errors"
)

const Version = "0.1.0"

// Logger is the minimal logging interface the client depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the analytics backend SDK client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	analytics     *AnalyticsClient
	analyticsOnce sync.Once
	changes       *ChangesClient
	changesOnce   sync.Once
	jobs          *JobsClient
	jobsOnce      sync.Once
}

// APIError represents an error response from the backend.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a backend SDK client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("baseURL is required")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidParam("invalid baseURL").WithCause(err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.InvalidParam("baseURL scheme must be http or https")
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("competiscope-go-sdk/%s", Version),
		logger:       &noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Analytics returns the analytics sub-client (lazy, thread-safe).
func (c *Client) Analytics() *AnalyticsClient {
	c.analyticsOnce.Do(func() {
		c.analytics = &AnalyticsClient{client: c}
	})
	return c.analytics
}

// Changes returns the change-log sub-client (lazy, thread-safe).
func (c *Client) Changes() *ChangesClient {
	c.changesOnce.Do(func() {
		c.changes = &ChangesClient{client: c}
	})
	return c.changes
}

// Jobs returns the async-jobs sub-client (lazy, thread-safe).
func (c *Client) Jobs() *JobsClient {
	c.jobsOnce.Do(func() {
		c.jobs = &JobsClient{client: c}
	})
	return c.jobs
}

// do performs an HTTP request with retry logic.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}

			// Reset body reader for retry.
			if body != nil {
				bodyBytes, _ := json.Marshal(body)
				bodyReader = bytes.NewReader(bodyBytes)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.New().String()
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			if c.shouldRetry(nil, err) {
				continue
			}
			return err
		}

		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			if retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil && attempt < c.retryMax {
					c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
					select {
					case <-time.After(time.Duration(seconds) * time.Second):
						continue
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				RequestID:  requestID,
			}

			if len(respBody) > 0 {
				var errResp struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
					apiErr.Code = errResp.Code
					apiErr.Message = errResp.Message
				} else {
					apiErr.Message = string(respBody)
				}
			}

			lastErr = apiErr
			if c.shouldRetry(resp, nil) {
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}

		return nil
	}

	return lastErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return true
	}
	// 4xx are not retried; 429 is handled separately via Retry-After.
	return false
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}

	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}
