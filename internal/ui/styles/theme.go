// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Header
	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderSession lipgloss.Style

	// Conversation blocks
	PromptBlock  lipgloss.Style
	AnswerBlock  lipgloss.Style
	AnswerFailed lipgloss.Style
	FailedMarker lipgloss.Style

	// Path bar
	PathBar         lipgloss.Style
	PathItem        lipgloss.Style
	PathItemCurrent lipgloss.Style

	// Input area
	InputPrompt lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusOK     lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Feedback
	Spinner   lipgloss.Style
	ErrorText lipgloss.Style
	InfoText  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.HeaderSession = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Conversation blocks
	t.PromptBlock = lipgloss.NewStyle().
		Foreground(PromptFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(PromptBorder).
		PaddingLeft(1).
		Bold(true)
	t.AnswerBlock = lipgloss.NewStyle().
		Foreground(AnswerFg).
		PaddingLeft(2)
	t.AnswerFailed = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)
	t.FailedMarker = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	// Path bar
	t.PathBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.PathItem = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.PathItemCurrent = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Input
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusOK = lipgloss.NewStyle().
		Foreground(Emerald)
	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Feedback
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.InfoText = lipgloss.NewStyle().
		Foreground(TextSecondary)
}
