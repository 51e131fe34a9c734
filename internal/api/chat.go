package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/models"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Send posts one message to the chat endpoint and returns the raw reply.
// Non-2xx statuses and transport faults are RequestErrors; a 2xx body
// without a string "response" field is a ParseError.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if c.IsClosed() {
		return "", apierrors.ErrClientClosed
	}

	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(models.EndpointChat), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, models.ChatHeaders())
	c.addSessionCookie(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", apierrors.NewTransportError(models.EndpointChat, "chat request failed", err)
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := readBody(resp, maxErrorBody)
		return "", apierrors.NewRequestError(resp.StatusCode, models.EndpointChat, "chat request failed", string(errorBody))
	}

	body, err := readBody(resp, maxBody)
	if err != nil {
		return "", apierrors.NewTransportError(models.EndpointChat, "failed to read chat response", err)
	}

	return parseChatResponse(body)
}

// parseChatResponse extracts the "response" string from a chat reply
func parseChatResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("invalid JSON in chat response", "")
	}

	result := gjson.GetBytes(body, "response")
	if !result.Exists() {
		return "", apierrors.NewParseError("missing response field", "response")
	}
	if result.Type != gjson.String {
		return "", apierrors.NewParseError(fmt.Sprintf("response field is %s, expected string", result.Type), "response")
	}

	return result.String(), nil
}
