// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/delvehq/delve-tui/internal/config"
	"github.com/delvehq/delve-tui/internal/conversation"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(config.Default(), zap.NewNop())
	// Size the model the way the Bubble Tea runtime would.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(*Model)
}

func TestModelStartsReady(t *testing.T) {
	m := newTestModel(t)
	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if !m.ready {
		t.Error("viewport should be ready after the first WindowSizeMsg")
	}
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	if cmd := m.submit(); cmd != nil {
		t.Error("blank input should not dispatch a question")
	}
	if m.state != StateReady {
		t.Errorf("state = %v after blank submit, want StateReady", m.state)
	}
}

func TestSubmitWhileStreamingRejected(t *testing.T) {
	m := newTestModel(t)
	m.state = StateStreaming
	m.input.SetValue("another question")

	if cmd := m.submit(); cmd != nil {
		t.Error("submit during streaming should not dispatch")
	}
	if m.statusMsg == "" {
		t.Error("rejection should set a status message")
	}
	if m.input.Value() != "another question" {
		t.Error("rejected input should stay in the field")
	}
}

func TestStreamCompleteReturnsToReady(t *testing.T) {
	m := newTestModel(t)
	m.state = StateStreaming

	updated, _ := m.Update(StreamCompleteMsg{ID: 9, FinalText: "done"})
	m = updated.(*Model)

	if m.state != StateReady {
		t.Errorf("state = %v after completion, want StateReady", m.state)
	}
}

func TestStreamFailedShowsReason(t *testing.T) {
	m := newTestModel(t)
	m.state = StateStreaming

	updated, _ := m.Update(StreamFailedMsg{ID: 9, Reason: conversation.ErrConcurrentStream})
	m = updated.(*Model)

	if m.state != StateReady {
		t.Errorf("state = %v after failure, want StateReady", m.state)
	}
	if m.statusMsg == "" {
		t.Error("failure should set a status message")
	}
}

func TestConversationViewShowsExchanges(t *testing.T) {
	m := newTestModel(t)
	store := m.Store()

	store.StartExchange("What is a closure?")
	store.Reconcile(9)
	store.CompleteExchange(9, "A function plus its environment.")

	view := m.conversationView()
	if !strings.Contains(view, "What is a closure?") {
		t.Error("conversation view missing the prompt text")
	}
	if !strings.Contains(view, "environment") {
		t.Error("conversation view missing the answer text")
	}
}

func TestAnswerViewMarksFailures(t *testing.T) {
	m := newTestModel(t)
	ex := conversation.Exchange{
		PromptText: "q",
		AnswerText: "partial answer",
		Status:     conversation.StatusFailed,
	}

	view := m.answerView(ex)
	if !strings.Contains(view, "partial answer") {
		t.Error("failed answer should retain partial text")
	}
	if !strings.Contains(view, "[incomplete]") {
		t.Error("failed answer should carry the incomplete marker")
	}
}

func TestFormatID(t *testing.T) {
	if got := formatID(9); got != "9" {
		t.Errorf("formatID(9) = %q", got)
	}
	if got := formatID(conversation.ProvisionalBase + 1); got != "?" {
		t.Errorf("formatID(provisional) = %q, want ?", got)
	}
}
