// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/delvehq/delve-tui/internal/conversation"
)

// =============================================================================
// COMMANDS
// =============================================================================

// waitForStream blocks on the engine event channel and re-arms itself
// after every delivered message.
func (m *Model) waitForStream() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// ask submits a prompt on the engine. Bubble Tea runs the command in its
// own goroutine, so the blocking Ask is fine here; progress and completion
// arrive through the event channel, only submission rejections surface as
// the command's own message.
func (m *Model) ask(prompt string) tea.Cmd {
	eng := m.mgr.Engine()
	return func() tea.Msg {
		_, err := eng.Ask(context.Background(), prompt)
		if errors.Is(err, conversation.ErrConcurrentStream) || errors.Is(err, conversation.ErrEmptyPrompt) {
			return AskRejectedMsg{Err: err}
		}
		// Stream outcomes were already delivered via callbacks.
		return nil
	}
}

// checkServer probes the exploration server.
func (m *Model) checkServer() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.CheckRunning(ctx); err != nil {
			return ServerStatusMsg{Running: false, Err: err}
		}
		return ServerStatusMsg{Running: true}
	}
}

// resetSession stops any in-flight stream and starts a fresh session.
func (m *Model) resetSession() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		return SessionResetMsg{Previous: mgr.StartNew()}
	}
}
