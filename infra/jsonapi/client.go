package jsonapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "scrollfeed"

// Client is a thin HTTP wrapper for the JSON feed API.
// It handles base URL construction and optional per-request timeouts.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates an API client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// Get performs a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API GET %s returned %d: %s", path, resp.StatusCode, string(data))
	}

	return data, nil
}
