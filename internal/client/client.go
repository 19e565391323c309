// Package client is the Go client of the stoxai API. It holds the session,
// attaches the bearer token and recovers from an expired access token with a
// single refresh and replay.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request, including the shared token refresh.
const DefaultTimeout = 10 * time.Second

// Client talks to the API on behalf of one user session. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	store   Store

	mu    sync.Mutex
	state State

	refreshGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Timeouts are never retried.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client and restores the session held by store.
func New(baseURL string, store Store, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}

	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	c.state = state
	return c, nil
}

// State returns a copy of the current session.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Authenticated reports whether the client holds a session.
func (c *Client) Authenticated() bool {
	return c.State().Authenticated()
}

// setState replaces the session and persists it.
func (c *Client) setState(s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	if err := c.store.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// expire discards tokens and the cached profile.
func (c *Client) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
	if err := c.store.Clear(); err != nil {
		slog.Warn("clear session", "error", err)
	}
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// send performs one HTTP round trip. bearer may be empty.
func (c *Client) send(ctx context.Context, method, path, bearer string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// decode reads a 2xx body into out, or turns a non-2xx body into *APIError.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func marshal(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return payload, nil
}

// doPublic sends an unauthenticated request.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	payload, err := marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, method, path, "", payload)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// doAuth sends a protected request. A 401 triggers exactly one refresh and
// one replay; a 401 on the replay is returned as *APIError.
func (c *Client) doAuth(ctx context.Context, method, path string, body, out any) error {
	token := c.State().AccessToken
	if token == "" {
		return ErrNotAuthenticated
	}
	payload, err := marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, token, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return decode(resp, out)
	}
	resp.Body.Close()

	fresh, err := c.refresh(ctx, token)
	if err != nil {
		return err
	}

	resp, err = c.send(ctx, method, path, fresh, payload)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// refresh returns an access token to replay with after stale was rejected.
// If another request already replaced stale, the current token is returned
// without a network call. Concurrent callers share one refresh request.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	current, refreshToken := c.state.AccessToken, c.state.RefreshToken
	c.mu.Unlock()

	if current != "" && current != stale {
		return current, nil
	}
	if refreshToken == "" {
		c.expire()
		return "", ErrSessionExpired
	}

	// The shared exchange outlives any single caller; http.Client.Timeout
	// still bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshToken, func() (any, error) {
		c.mu.Lock()
		current := c.state.AccessToken
		c.mu.Unlock()
		if current != "" && current != stale {
			return current, nil
		}
		return c.exchange(shared, refreshToken)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// exchange calls POST /auth/refresh. The session ends only when the server
// rejects the refresh token or answers without an access token; transport
// failures leave it intact.
func (c *Client) exchange(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil)
	if err != nil {
		slog.Debug("token refresh did not complete", "error", err)
		return "", err
	}
	err = decode(resp, &out)
	if err == nil && out.AccessToken == "" {
		err = errors.New("refresh response has no access token")
	}
	if err != nil {
		slog.Debug("token refresh failed", "error", err)
		c.expire()
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.RefreshToken != refreshToken {
		// Logged out or re-authenticated while the refresh was in flight.
		return "", ErrSessionExpired
	}
	c.state.AccessToken = out.AccessToken
	if err := c.store.Save(c.state); err != nil {
		slog.Warn("save refreshed session", "error", err)
	}
	return out.AccessToken, nil
}
