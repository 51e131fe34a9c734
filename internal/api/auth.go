package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/hrdesk/internal/config"
	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/models"
)

// Login submits the portal's login form. The portal answers a good login
// with a redirect away from /login that sets the session cookie; a bad one
// re-renders the form.
func (c *Client) Login(ctx context.Context, username, password string) (*config.Session, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}
	if username == "" || password == "" {
		return nil, apierrors.NewAuthError("username and password are required")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(models.EndpointLogin), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, models.LoginHeaders())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewTransportError(models.EndpointLogin, "login request failed", err)
	}
	defer closeBody(resp)

	if resp.StatusCode >= 500 {
		errorBody, _ := readBody(resp, maxErrorBody)
		return nil, apierrors.NewRequestError(resp.StatusCode, models.EndpointLogin, "login request failed", string(errorBody))
	}

	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return nil, apierrors.NewAuthError("invalid credentials")
	}
	if isLoginRedirect(resp.Header.Get("Location")) {
		return nil, apierrors.NewAuthError("invalid credentials")
	}

	session := sessionFromResponse(resp, c.Host())
	if session == nil {
		return nil, apierrors.NewAuthError("login succeeded but no session cookie was set")
	}

	c.SetSession(session)
	return session, nil
}

// Logout ends the server-side session and drops the local one
func (c *Client) Logout(ctx context.Context) error {
	if c.IsClosed() {
		return apierrors.ErrClientClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(models.EndpointLogout), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, models.DefaultHeaders())
	c.addSessionCookie(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewTransportError(models.EndpointLogout, "logout request failed", err)
	}
	closeBody(resp)

	c.SetSession(nil)
	return nil
}

// isLoginRedirect reports whether a Location header points back at /login
func isLoginRedirect(location string) bool {
	if location == "" {
		return true
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.TrimRight(u.Path, "/") == models.EndpointLogin
}
