// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/delvehq/delve-tui/internal/conversation"
	"github.com/delvehq/delve-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Starting delve..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.cfg.UI.ShowPathBar {
		b.WriteString(m.pathBarView())
		b.WriteString("\n")
	}
	b.WriteString(m.inputView())
	b.WriteString("\n")
	b.WriteString(m.statusBarView())
	return b.String()
}

// chromeHeight is the number of terminal rows used outside the viewport.
func (m *Model) chromeHeight() int {
	h := 4 // header, input, status bar, spacing
	if m.cfg.UI.ShowPathBar {
		h++
	}
	return h
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) headerView() string {
	title := m.theme.HeaderTitle.Render("delve")
	sessionID := m.mgr.SessionID()
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	meta := m.theme.HeaderSession.Render("session " + sessionID + " | " + m.cfg.DefaultModel)
	return m.theme.Header.Render(title + "  " + meta)
}

func (m *Model) pathBarView() string {
	path := m.Store().CurrentPath()
	if len(path) == 0 {
		return m.theme.PathBar.Width(m.width).Render(m.theme.PathItem.Render("no questions yet"))
	}

	items := make([]string, 0, len(path))
	for i, id := range path {
		ex, err := m.Store().Lookup(id)
		if err != nil {
			continue
		}

		label := "#" + formatID(id) + " " + ex.Preview(m.cfg.UI.PreviewWidth)
		if i == len(path)-1 {
			items = append(items, m.theme.PathItemCurrent.Render(label))
		} else {
			items = append(items, m.theme.PathItem.Render(label))
		}
	}
	bar := strings.Join(items, m.theme.PathItem.Render(" > "))
	return m.theme.PathBar.Width(m.width).Render(util.TruncateWidth(bar, m.width-2))
}

func (m *Model) inputView() string {
	prompt := m.theme.InputPrompt.Render("? ")
	if m.state == StateStreaming {
		prompt = m.theme.Spinner.Render(m.spinner.View() + " ")
	}
	return prompt + m.input.View()
}

func (m *Model) statusBarView() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
	}

	var server string
	if m.serverUp {
		server = m.theme.StatusOK.Render("server up")
	} else {
		server = m.theme.StatusError.Render("server down")
	}

	shortcuts := strings.Join([]string{
		m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" ask"),
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" stop"),
		m.theme.ShortcutKey.Render("C-n") + m.theme.ShortcutDesc.Render(" new"),
		m.theme.ShortcutKey.Render("C-c") + m.theme.ShortcutDesc.Render(" quit"),
	}, "  ")

	left := server + "  " + shortcuts
	return m.theme.StatusBar.Width(m.width).Render(left)
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the viewport content from the store.
// When follow is true the viewport sticks to the bottom.
func (m *Model) refreshViewport(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.conversationView())
	if follow {
		m.viewport.GotoBottom()
	}
}

// conversationView renders every exchange on the current path.
func (m *Model) conversationView() string {
	path := m.Store().CurrentPath()
	if len(path) == 0 {
		return m.theme.InfoText.Render("\n  Ask anything to start exploring.\n")
	}

	blocks := make([]string, 0, len(path)*2)
	for _, id := range path {
		ex, err := m.Store().Lookup(id)
		if err != nil {
			continue
		}
		blocks = append(blocks, m.theme.PromptBlock.Render(ex.PromptText))
		blocks = append(blocks, m.answerView(ex))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

// answerView renders one exchange's answer according to its status.
func (m *Model) answerView(ex conversation.Exchange) string {
	switch ex.Status {
	case conversation.StatusPending:
		return m.theme.AnswerBlock.Render(m.spinner.View() + " thinking...")

	case conversation.StatusStreaming:
		// Plain text while streaming; markdown needs the full document.
		return m.theme.AnswerBlock.Render(ex.AnswerText)

	case conversation.StatusFailed:
		body := ex.AnswerText
		if body != "" {
			body += "\n"
		}
		return m.theme.AnswerFailed.Render(body) +
			m.theme.FailedMarker.Render("  [incomplete]")

	default:
		return m.theme.AnswerBlock.Render(m.renderMarkdown(ex.AnswerText))
	}
}

// formatID renders an exchange id, marking provisional ones.
func formatID(id int64) string {
	if conversation.IsProvisionalID(id) {
		return "?"
	}
	return util.Int64ToString(id)
}
