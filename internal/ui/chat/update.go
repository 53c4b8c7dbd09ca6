// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/delvehq/delve-tui/internal/session"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.buildRenderer()

		chrome := m.chromeHeight()
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport(true)

	case tea.KeyMsg:
		m.mgr.RecordActivity()
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			if m.state == StateStreaming {
				m.mgr.Engine().Stop()
				return m, nil
			}
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Cancel):
			if m.state == StateStreaming {
				m.mgr.Engine().Stop()
			}
			return m, nil

		case key.Matches(msg, m.keyMap.NewSession):
			return m, m.resetSession()

		case key.Matches(msg, m.keyMap.Submit):
			return m, m.submit()

		case key.Matches(msg, m.keyMap.PageUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keyMap.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

	case StreamProgressMsg:
		m.refreshViewport(true)
		cmds = append(cmds, m.waitForStream())

	case StreamCompleteMsg:
		m.state = StateReady
		m.statusMsg = ""
		m.refreshViewport(true)
		cmds = append(cmds, m.waitForStream())

	case StreamFailedMsg:
		m.state = StateReady
		if msg.Reason != nil {
			m.statusMsg = m.theme.ErrorText.Render("answer interrupted: " + msg.Reason.Error())
		}
		m.refreshViewport(true)
		cmds = append(cmds, m.waitForStream())

	case AskRejectedMsg:
		m.state = StateReady
		m.statusMsg = m.theme.ErrorText.Render(msg.Err.Error())
		cmds = append(cmds, m.waitForStream())

	case SessionResetMsg:
		m.state = StateReady
		m.statusMsg = m.theme.InfoText.Render(
			"new session started (previous: " +
				session.FormatDuration(msg.Previous.Duration) + ")")
		m.refreshViewport(false)

	case ServerStatusMsg:
		m.serverUp = msg.Running
		m.serverErr = msg.Err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		// Picks up the pending prompt right after a submit, before the
		// first progress emission arrives.
		if m.state == StateStreaming {
			m.refreshViewport(true)
		}
	}

	// Input gets every message it understands.
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// submit validates and dispatches the input line as a question.
func (m *Model) submit() tea.Cmd {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return nil
	}
	if m.state == StateStreaming {
		m.statusMsg = m.theme.ErrorText.Render("an answer is still streaming (esc to stop it)")
		return nil
	}

	m.input.Reset()
	m.state = StateStreaming
	m.statusMsg = ""
	return m.ask(prompt)
}
