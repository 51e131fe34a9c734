package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAuthError(t *testing.T) {
	err := NewAuthError("invalid credentials")

	expected := "authentication failed: invalid credentials"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrAuthFailed) {
		t.Error("Expected AuthError to match ErrAuthFailed")
	}

	if !err.Is(NewAuthError("other")) {
		t.Error("Expected error to be auth error type")
	}

	if err.Is(errors.New("standard error")) {
		t.Error("Expected error not to match standard error")
	}
}

func TestAuthError_EmptyMessage(t *testing.T) {
	err := NewAuthError("")
	if err.Error() != "authentication failed: session may have expired" {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestRequestError(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		want string
	}{
		{
			name: "status",
			err:  NewRequestError(500, "/api/chat", "chat request failed", "boom"),
			want: "request error [500] at /api/chat: chat request failed",
		},
		{
			name: "transport",
			err:  NewTransportError("/api/chat", "chat request failed", errors.New("connection refused")),
			want: "request error at /api/chat: chat request failed: connection refused",
		},
		{
			name: "bare",
			err:  &RequestError{Endpoint: "/api/chat", Message: "no body"},
			want: "request error at /api/chat: no body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestError_AuthMatch(t *testing.T) {
	if !IsAuthError(NewRequestError(401, "/api/chat", "unauthorized", "")) {
		t.Error("401 should be an auth error")
	}
	if IsAuthError(NewRequestError(500, "/api/chat", "server error", "")) {
		t.Error("500 should not be an auth error")
	}
}

func TestHelpers_Wrapped(t *testing.T) {
	base := NewRequestError(502, "/api/chat", "bad gateway", "upstream down")
	wrapped := fmt.Errorf("send: %w", base)

	if got := GetHTTPStatus(wrapped); got != 502 {
		t.Errorf("GetHTTPStatus() = %d, want 502", got)
	}
	if got := GetEndpoint(wrapped); got != "/api/chat" {
		t.Errorf("GetEndpoint() = %q", got)
	}
	if got := GetResponseBody(wrapped); got != "upstream down" {
		t.Errorf("GetResponseBody() = %q", got)
	}
	if !IsRequestError(wrapped) {
		t.Error("IsRequestError() = false, want true")
	}
	if IsNetworkError(wrapped) {
		t.Error("a status error is not a network error")
	}
}

func TestHelpers_Plain(t *testing.T) {
	plain := errors.New("plain")
	if GetHTTPStatus(plain) != 0 || GetEndpoint(plain) != "" || GetResponseBody(plain) != "" {
		t.Error("helpers should return zero values for plain errors")
	}
	if IsRequestError(plain) || IsNetworkError(plain) || IsAuthError(plain) || IsTimeoutError(plain) {
		t.Error("plain error should match nothing")
	}
	if IsAuthError(nil) || IsTimeoutError(nil) {
		t.Error("nil should match nothing")
	}
}

func TestIsNetworkError(t *testing.T) {
	err := NewTransportError("/api/chat", "chat request failed", errors.New("dial tcp: refused"))
	if !IsNetworkError(err) {
		t.Error("transport error should be a network error")
	}
}

func TestIsTimeoutError(t *testing.T) {
	err := NewTransportError("/api/chat", "chat request failed", context.DeadlineExceeded)
	if !IsTimeoutError(err) {
		t.Error("deadline exceeded should be a timeout")
	}
	if IsTimeoutError(NewTransportError("/api/chat", "x", context.Canceled)) {
		t.Error("cancel is not a timeout")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing response field", "response")

	if err.Error() != "parse error at response: missing response field" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
	if NewParseError("x", "").Error() != "parse error: x" {
		t.Error("unexpected message without path")
	}
}
