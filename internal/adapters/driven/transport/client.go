package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4096

// StatusError is returned by Client.Do for non-2xx responses.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Client sends JSON requests to a single provider.
// It is used by the adapters whose providers ship no Go SDK.
type Client struct {
	provider string
	baseURL  string
	headers  http.Header
	http     *http.Client
}

// NewClient creates a client for baseURL. timeout bounds every request in
// addition to the caller's context.
func NewClient(provider, baseURL string, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		headers:  make(http.Header),
		http:     &http.Client{Timeout: timeout},
	}
}

// SetHeader adds a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends in as the JSON body (none when nil) and decodes a 2xx response
// into out (skipped when nil). Transport errors are returned unclassified.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Provider: c.provider,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
