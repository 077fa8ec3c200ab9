// Package api is the HTTP client for the controller's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jask/cncdeck/internal/machine"
	"github.com/jask/cncdeck/internal/macro"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to one controller. Requests are neither retried nor
// deduplicated.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// NewClient returns a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the controller address.
func (c *Client) BaseURL() string { return c.baseURL }

type recordsEnvelope[T any] struct {
	Records []T `json:"records"`
}

// ListMacros fetches every stored macro.
func (c *Client) ListMacros(ctx context.Context) ([]macro.Macro, error) {
	var env recordsEnvelope[macro.Macro]
	if err := c.do(ctx, http.MethodGet, "/api/macros", nil, &env); err != nil {
		return nil, err
	}
	return env.Records, nil
}

// GetMacro fetches one macro.
func (c *Client) GetMacro(ctx context.Context, id string) (macro.Macro, error) {
	var m macro.Macro
	err := c.do(ctx, http.MethodGet, macroPath(id), nil, &m)
	return m, err
}

// CreateMacro stores a new macro and returns it with its id.
func (c *Client) CreateMacro(ctx context.Context, in macro.Input) (macro.Macro, error) {
	var m macro.Macro
	err := c.do(ctx, http.MethodPost, "/api/macros", in, &m)
	return m, err
}

// UpdateMacro replaces the name and content of macro id.
func (c *Client) UpdateMacro(ctx context.Context, id string, in macro.Input) error {
	return c.do(ctx, http.MethodPut, macroPath(id), in, nil)
}

// DeleteMacro removes macro id.
func (c *Client) DeleteMacro(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, macroPath(id), nil, nil)
}

// RunMacro asks the controller to execute macro id.
func (c *Client) RunMacro(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, macroPath(id)+"/run", nil, nil)
}

// FetchMachines returns the controller's machine profiles.
func (c *Client) FetchMachines(ctx context.Context) ([]machine.Profile, error) {
	var env recordsEnvelope[machine.Profile]
	if err := c.do(ctx, http.MethodGet, "/api/machines", nil, &env); err != nil {
		return nil, err
	}
	return machine.Ensure(env.Records), nil
}

func macroPath(id string) string {
	return "/api/macros/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
