// Package api implements the HR portal's HTTP contract: the chat endpoint
// and the form login that issues the session cookie.
package api

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/models"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// maxBody caps a successful response body
const maxBody = 1 << 20

// Client talks to one portal instance
type Client struct {
	httpClient     tls_client.HttpClient
	baseURL        string
	session        *config.Session
	userAgent      string
	timeoutSeconds int
	mu             sync.RWMutex
	closed         bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithSession attaches a stored session cookie
func WithSession(s *config.Session) ClientOption {
	return func(c *Client) {
		c.session = s
	}
}

// WithTimeoutSeconds sets the transport timeout. Zero disables it.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the TLS client, mainly for tests
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the portal at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// Chrome profile for browser emulation; redirects are inspected by Login
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close marks the client closed; later requests fail with ErrClientClosed
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BaseURL returns the portal base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Host returns the portal host name
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// GetSession returns the current session, nil when logged out
func (c *Client) GetSession() *config.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the current session
func (c *Client) SetSession(s *config.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// setHeaders applies headers plus the User-Agent override
func (c *Client) setHeaders(req *http.Request, headers map[string]string) {
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// addSessionCookie attaches the session cookie when one is set
func (c *Client) addSessionCookie(req *http.Request) {
	s := c.GetSession()
	if s == nil {
		return
	}
	name, value, _ := s.Snapshot()
	if value != "" {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// readBody reads at most limit bytes of a response body
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

// sessionFromResponse returns the session cookie set by resp, if any
func sessionFromResponse(resp *http.Response, host string) *config.Session {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == models.SessionCookieName && cookie.Value != "" {
			return config.NewSession(cookie.Value, host)
		}
	}
	return nil
}
