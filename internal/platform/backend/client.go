// Package backend provides the JSON transport to the external finance API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

// Observer receives one observation per completed backend call.
type Observer interface {
	ObserveBackend(op string, status int, elapsed time.Duration)
}

// Client performs authenticated JSON calls against the backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver registers an Observer for call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient constructs a Client. A zero timeout leaves the transport unbounded.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes a single backend call.
type Request struct {
	// Op names the call in errors and metrics, e.g. "auth.login".
	Op     string
	Method string
	Path   string
	Token  string
	Body   any
}

// Do executes req and decodes a successful JSON response into out when out is
// non-nil. Transport failures return *NetworkError, non-2xx answers *APIError
// and undecodable payloads a wrapped decode error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return errors.New("backend: client not configured")
	}
	started := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackend(req.Op, status, time.Since(started))
		}
	}()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("backend %s: encode body: %w", req.Op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("backend %s: build request: %w", req.Op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: req.Op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return &NetworkError{Op: req.Op, Err: readErr}
		}
		return &APIError{Op: req.Op, Status: resp.StatusCode, Message: ServerMessage(raw), Body: raw}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("backend %s: decode response: %w", req.Op, err)
	}
	return nil
}
