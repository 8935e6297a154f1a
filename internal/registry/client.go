package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client queries a crates-compatible registry for a package's versions.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Timeouts, if any, belong to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient returns a client rooted at baseURL (e.g. "https://crates.io").
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// VersionsURL returns the versions endpoint for name.
func (c *Client) VersionsURL(name string) string {
	return fmt.Sprintf("%s/api/v1/crates/%s/versions", c.baseURL, url.PathEscape(name))
}

// FetchLatest performs exactly one request and returns the latest version.
// The body is decoded whatever the status code: a 404 still carries an
// errors payload.
func (c *Client) FetchLatest(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.VersionsURL(name), nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	var decoded VersionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return Interpret(decoded)
}
