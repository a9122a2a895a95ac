// Package api is a typed client for the notes JSON API. It carries the
// caller's token pair and refreshes an expired access token once per call.
package api

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
	"sync"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
)

// TokenPair is the access/refresh token pair issued at login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	tokens    TokenPair
	onRefresh func(TokenPair)
}

// New returns a client for the API rooted at baseURL (scheme://host[:port]).
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetTokens installs the pair used to authenticate subsequent calls.
func (c *Client) SetTokens(p TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = p
}

// Tokens returns the current pair, including any rotated by a refresh.
func (c *Client) Tokens() TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// OnRefresh registers fn to be called with the new pair after every
// successful automatic refresh.
func (c *Client) OnRefresh(fn func(TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func encode(in any) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

// do sends an authenticated request and decodes a JSON response into out
// (if non-nil). An access token rejected as expired is refreshed and the
// call retried once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, query, body, out, true)
	if !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	return c.send(ctx, method, path, query, body, out, true)
}

// doPublic is do without credentials, for the /api/auth endpoints.
func (c *Client) doPublic(ctx context.Context, method, path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, nil, body, out, false)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, out any, withAuth bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Tokens().AccessToken; withAuth && tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var eb struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(data))
	}
	return &Error{Status: resp.StatusCode, Message: eb.Error}
}

func (c *Client) refresh(ctx context.Context) error {
	current := c.Tokens()
	if current.RefreshToken == "" {
		return common.ErrTokenExpired
	}

	var pair TokenPair
	if err := c.doPublic(ctx, http.MethodPost, "/api/auth/refresh", refreshRequest{RefreshToken: current.RefreshToken}, &pair); err != nil {
		return err
	}

	c.mu.Lock()
	c.tokens = pair
	fn := c.onRefresh
	c.mu.Unlock()

	if fn != nil {
		fn(pair)
	}
	return nil
}

func escape(id string) string { return url.PathEscape(id) }
