// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// CLIENT TESTS
// =============================================================================

func newTestClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: url})
}

func TestClient_StreamQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/explore/question" {
			t.Errorf("path = %q, want /explore/question", r.URL.Path)
		}

		var qr QuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&qr); err != nil {
			t.Errorf("request body not decodable: %v", err)
		}
		if qr.Question != "What is a closure?" {
			t.Errorf("Question = %q", qr.Question)
		}
		if qr.Model == "" {
			t.Error("default model should have been filled in")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: hello\n\n"))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).StreamQuestion(context.Background(), QuestionRequest{
		Question: "What is a closure?",
	})
	if err != nil {
		t.Fatalf("StreamQuestion() error: %v", err)
	}
	defer body.Close()

	frag, err := NewDecoder(body).Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if frag != "hello" {
		t.Errorf("fragment = %q, want %q", frag, "hello")
	}
}

func TestClient_StreamQuestion_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "thread content not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).StreamQuestion(context.Background(), QuestionRequest{Question: "q"})
	if !IsTransportError(err) {
		t.Fatalf("non-success status should be transport-typed, got %v", err)
	}
	if err.Error() != "thread content not found" {
		t.Errorf("Error() = %q, want server detail", err.Error())
	}
}

func TestClient_StreamQuestion_Unreachable(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).StreamQuestion(context.Background(), QuestionRequest{Question: "q"})
	if !IsTransportError(err) {
		t.Fatalf("connection failure should be transport-typed, got %v", err)
	}
}

func TestClient_CheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error: %v", err)
	}
}

func TestClient_ConfigDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	cfg := c.GetConfig()

	if cfg.BaseURL == "" || cfg.QuestionPath == "" || cfg.Timeout == 0 || cfg.DefaultModel == "" {
		t.Errorf("zero values should be filled with defaults: %+v", cfg)
	}
}
