// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the exploration server client.
type ClientConfig struct {
	// BaseURL is the exploration server base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// QuestionPath is the streaming question endpoint (default: /explore/question)
	QuestionPath string

	// Timeout for non-streaming requests (default: 30s). Streaming reads
	// are bounded by the caller's context instead.
	Timeout time.Duration

	// DefaultModel to request if none specified
	DefaultModel string
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:8000",
		QuestionPath: "/explore/question",
		Timeout:      30 * time.Second,
		DefaultModel: "gpt-4o-mini",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the generic "POST a request, read a streaming body" primitive
// for the exploration server. It owns no conversation state; it hands the
// raw byte stream to the Decoder.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.QuestionPath == "" {
		config.QuestionPath = "/explore/question"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DefaultModel == "" {
		config.DefaultModel = "gpt-4o-mini"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the exploration server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &StreamError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrServerUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &StreamError{
			Type:    ErrTypeTransport,
			Message: "unexpected status from server: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// STREAMING QUESTION
// =============================================================================

// QuestionRequest is the request body for the streaming question endpoint.
type QuestionRequest struct {
	// ChatID identifies the server-side chat; empty starts a new one.
	ChatID string `json:"chat_id,omitempty"`

	// Question is the prompt text. Required.
	Question string `json:"question"`

	// Model selects the generation model.
	Model string `json:"model,omitempty"`

	// ExtraInstructions are appended to the system prompt server-side.
	ExtraInstructions string `json:"extra_instructions,omitempty"`
}

// StreamQuestion opens the answer stream for a question and returns the
// response body. The caller must close it; cancelling ctx closes the
// underlying connection and ends the stream.
//
// Failures to open the stream (server unreachable, non-success status) are
// transport-typed and fatal: no retry or backoff happens here.
func (c *Client) StreamQuestion(ctx context.Context, qr QuestionRequest) (io.ReadCloser, error) {
	if qr.Model == "" {
		qr.Model = c.config.DefaultModel
	}

	body, err := json.Marshal(qr)
	if err != nil {
		return nil, &StreamError{Type: ErrTypeTransport, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.config.QuestionPath, bytes.NewReader(body))
	if err != nil {
		return nil, &StreamError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	// No client timeout for streaming; lifetime is bound to ctx.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &StreamError{Type: ErrTypeTransport, Message: "stream request cancelled", Cause: err}
		}
		return nil, ErrServerUnreachable
	}

	if resp.StatusCode != http.StatusOK {
		detail := readErrorDetail(resp.Body)
		resp.Body.Close()
		if detail != "" {
			return nil, &StreamError{Type: ErrTypeTransport, Message: detail}
		}
		return nil, &StreamError{
			Type:    ErrTypeTransport,
			Message: "stream request failed: " + resp.Status,
		}
	}

	return resp.Body, nil
}

// readErrorDetail extracts the FastAPI-style {"detail": ...} message from a
// failed response, if any.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
