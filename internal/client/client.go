// Package client talks to a running toastuid over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/server"
)

// ErrNotFound is returned when the daemon does not know the requested toast.
var ErrNotFound = errors.New("toast not found")

// APIError is a non-success response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// Is reports a 404 as ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for the daemon at addr, which may be a host:port or
// a full http URL.
func New(addr string, timeout time.Duration) (*Client, error) {
	if addr == "" {
		return nil, errors.New("daemon address is empty")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported daemon scheme %q", u.Scheme)
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e server.ErrorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// List returns the live toasts in insertion order.
func (c *Client) List(ctx context.Context) ([]*model.Notification, error) {
	var out []*model.Notification
	if err := c.do(ctx, http.MethodGet, server.PathToasts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create asks the daemon to show a toast and returns it as created.
func (c *Client) Create(ctx context.Context, req model.Request) (*model.Notification, error) {
	var out model.Notification
	if err := c.do(ctx, http.MethodPost, server.PathToasts, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one live toast.
func (c *Client) Get(ctx context.Context, id string) (*model.Notification, error) {
	var out model.Notification
	if err := c.do(ctx, http.MethodGet, server.PathToasts+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dismiss removes a toast immediately.
func (c *Client) Dismiss(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, server.PathToasts+"/"+url.PathEscape(id), nil, nil)
}

// Clear removes every toast and returns how many were live.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var out server.ClearResponse
	if err := c.do(ctx, http.MethodDelete, server.PathToasts, nil, &out); err != nil {
		return 0, err
	}
	return out.Cleared, nil
}

// Watch streams center events to fn until ctx is cancelled or the
// connection drops. A nil error is returned only on cancellation.
func (c *Client) Watch(ctx context.Context, fn func(server.StreamMessage)) error {
	u := *c.base
	u.Scheme = "ws"
	if c.base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + server.PathStream

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("connect to event stream: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var msg server.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			_ = conn.Close()
			return fmt.Errorf("read event stream: %w", err)
		}
		fn(msg)
	}
}
