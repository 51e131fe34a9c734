// Package errors provides custom error types for the hrdesk chat client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed      = errors.New("authentication failed")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoSession       = errors.New("no session found")
	ErrClientClosed    = errors.New("client is closed")

	// ErrEmptyMessage is returned when a submit carries only whitespace.
	// The controller state is left untouched.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrExchangePending is returned when a submit arrives while another
	// exchange is still waiting for its reply.
	ErrExchangePending = errors.New("an exchange is already pending")
)

// AuthError represents an authentication failure
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: session may have expired"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// RequestError represents a failed exchange with the chat backend: either a
// non-2xx status or a transport fault. Both collapse into the same kind.
type RequestError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
	Cause      error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("request error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("request error at %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	default:
		return fmt.Sprintf("request error at %s: %s", e.Endpoint, e.Message)
	}
}

// Unwrap returns the transport cause, if any
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is matches ErrAuthFailed for 401 responses
func (e *RequestError) Is(target error) bool {
	if target == ErrAuthFailed {
		return e.StatusCode == 401
	}
	_, ok := target.(*RequestError)
	return ok
}

// NewRequestError creates a RequestError for a non-2xx response
func NewRequestError(statusCode int, endpoint, message, body string) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NewTransportError creates a RequestError for a transport-level fault
func NewTransportError(endpoint, message string, cause error) *RequestError {
	return &RequestError{
		Endpoint: endpoint,
		Message:  message,
		Cause:    cause,
	}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the (truncated) response body carried by err, or ""
func GetResponseBody(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Body
	}
	return ""
}

// IsRequestError reports whether err is a backend request failure
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	return err != nil && errors.Is(err, ErrAuthFailed)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError reports whether err is a transport fault (no HTTP status)
func IsNetworkError(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == 0 && reqErr.Cause != nil
}
