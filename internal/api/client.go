// Package api is the HTTP client for the TaskFlow server. All business
// rules live server-side; this client marshals requests, attaches the
// bearer credential, and decodes responses.
package api

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

const defaultTimeout = 30 * time.Second

// TokenProvider returns the current bearer token, or "" for anonymous
// requests. It is evaluated on every call so token rotation is honored
// without rebuilding the client.
type TokenProvider func() string

// Client is a TaskFlow API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
}

// New creates a client for the API rooted at baseURL. tokens may be nil,
// in which case every request goes out anonymous.
func New(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Intended for tests and
// callers that need custom transport settings.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// do performs a request against path, encoding body as JSON when non-nil
// and decoding the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts an error message from a failed response. The server
// reports either {"message": ...} or a problem-details {"title": ...}.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = payload.Title
		}
	}
	return apiErr
}
