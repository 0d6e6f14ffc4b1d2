// Package upstream issues GET requests to the third-party API on behalf of callers.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/xrelay/internal/domain/feed"
)

// Defaults for a Client built without options.
const (
	DefaultBaseURL = "https://api.twitter.com/2"
	maxBodyBytes   = 16 << 20
)

// Response is an upstream reply ready to be relayed. Body is valid JSON.
type Response struct {
	Status int
	Body   []byte
}

// Fetcher performs one upstream GET for a resource.
type Fetcher interface {
	Fetch(ctx context.Context, r feed.Resource, authorization string) (*Response, error)
}

// Client is a Fetcher backed by net/http.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. Without options it targets DefaultBaseURL with a
// client that has no timeout of its own.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client resolves resources against.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch sends GET <base><resource> with the Authorization header set to
// authorization verbatim. Any upstream status is returned as a Response;
// only failures to complete the exchange or a non-JSON body are errors.
func (c *Client) Fetch(ctx context.Context, r feed.Resource, authorization string) (*Response, error) {
	const op = "upstream.fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(c.baseURL), http.NoBody)
	if err != nil {
		return nil, newError(op, r.Name, ErrTransport, err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(op, r.Name, ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newError(op, r.Name, ErrTransport, err)
	}
	if !json.Valid(body) {
		return nil, newError(op, r.Name, ErrMalformedResponse, invalidJSON(body))
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// invalidJSON reports why body does not parse.
func invalidJSON(body []byte) error {
	var v json.RawMessage
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

// CloseIdleConnections releases pooled upstream connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
