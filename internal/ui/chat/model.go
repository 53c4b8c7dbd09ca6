// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/delvehq/delve-tui/internal/config"
	"github.com/delvehq/delve-tui/internal/conversation"
	"github.com/delvehq/delve-tui/internal/engine"
	"github.com/delvehq/delve-tui/internal/session"
	"github.com/delvehq/delve-tui/internal/stream"
	"github.com/delvehq/delve-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming answer
)

// eventBuffer bounds the bridge channel between the engine's callback
// goroutine and the Bubble Tea update loop.
const eventBuffer = 256

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool // Viewport is sized after the first WindowSizeMsg

	// Session and engine
	mgr    *session.Manager
	client *stream.Client
	cfg    *config.Config

	// Bridge from engine callbacks into the update loop
	events chan tea.Msg

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering for completed answers
	renderer *glamour.TermRenderer

	// Key bindings
	keyMap KeyMap

	// Server status
	serverUp  bool
	serverErr error

	// Transient status line (rejections, session resets)
	statusMsg string
}

// NewModel builds the chat model and the engine it drives. Engine
// callbacks are wired to the model's event channel, so stream updates
// arrive as Bubble Tea messages.
func NewModel(cfg *config.Config, logger *zap.Logger) *Model {
	events := make(chan tea.Msg, eventBuffer)

	client := stream.NewClientWithConfig(&stream.ClientConfig{
		BaseURL:      cfg.Server.BaseURL,
		QuestionPath: cfg.Server.QuestionPath,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		DefaultModel: cfg.DefaultModel,
	})

	callbacks := engine.Callbacks{
		OnProgress: func(id int64, accumulated string) {
			// Dropping a progress snapshot is safe, the next one carries
			// the full text anyway.
			select {
			case events <- StreamProgressMsg{ID: id, Accumulated: accumulated}:
			default:
			}
		},
		OnComplete: func(id int64, finalText string) {
			events <- StreamCompleteMsg{ID: id, FinalText: finalText}
		},
		OnFailed: func(id int64, reason error) {
			events <- StreamFailedMsg{ID: id, Reason: reason}
		},
	}

	eng := engine.New(conversation.NewStore(), client, callbacks, engine.Options{
		ProgressInterval:  time.Duration(cfg.Stream.ProgressIntervalMS) * time.Millisecond,
		Model:             cfg.DefaultModel,
		ExtraInstructions: cfg.Stream.ExtraInstructions,
		Logger:            logger,
	})

	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Line

	return &Model{
		state:   StateReady,
		theme:   styles.NewTheme(),
		mgr:     session.NewManager(eng),
		client:  client,
		cfg:     cfg,
		events:  events,
		input:   input,
		spinner: spin,
		keyMap:  DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForStream(),
		m.checkServer(),
	)
}

// Store returns the session's conversation store.
func (m *Model) Store() *conversation.Store {
	return m.mgr.Store()
}

// buildRenderer rebuilds the markdown renderer for the current width.
// A nil renderer falls back to plain text.
func (m *Model) buildRenderer() {
	if !m.cfg.UI.Markdown {
		m.renderer = nil
		return
	}
	wrap := m.width - 6
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
