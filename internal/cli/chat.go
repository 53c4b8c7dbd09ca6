// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the delve CLI.
//
// Handles the "delve chat" command: a plain REPL for terminals where the
// TUI is unwanted (ssh sessions, screen readers, logs). Questions stream
// to stdout as fragments arrive; completed answers are re-rendered as
// markdown when stdout is a TTY.
//
// Interactive commands (during chat):
//
//	/help, /h       Show available commands
//	/status, /s     Show session statistics
//	/history        Show the conversation path
//	/new            Start a fresh session
//	/quit, /q       Exit chat
//	Ctrl+C          Cancel the current answer
//	Ctrl+D          Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/delvehq/delve-tui/internal/config"
	"github.com/delvehq/delve-tui/internal/conversation"
	"github.com/delvehq/delve-tui/internal/engine"
	"github.com/delvehq/delve-tui/internal/session"
	"github.com/delvehq/delve-tui/internal/stream"
	"github.com/delvehq/delve-tui/internal/telemetry"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Config  *config.Config
	Manager *session.Manager
	Client  *stream.Client
	Quiet   bool

	// printed tracks how much of the current answer reached stdout, so
	// each full-text progress emission prints only its new suffix.
	printed int

	logger   *zap.Logger
	renderer *glamour.TermRenderer
}

// NewChatSession creates a new chat session from config and CLI args.
func NewChatSession(args Args) *ChatSession {
	cfg := config.Global()
	if args.ServerURL != "" {
		cfg.Server.BaseURL = args.ServerURL
	}
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
	if args.Extra != "" {
		cfg.Stream.ExtraInstructions = args.Extra
	}

	logger := telemetry.NewLogger(args.Verbose)

	client := stream.NewClientWithConfig(&stream.ClientConfig{
		BaseURL:      cfg.Server.BaseURL,
		QuestionPath: cfg.Server.QuestionPath,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		DefaultModel: cfg.DefaultModel,
	})

	s := &ChatSession{
		Config: cfg,
		Client: client,
		Quiet:  args.Quiet,
		logger: logger,
	}

	if IsStdoutTTY() && cfg.UI.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			s.renderer = renderer
		}
	}

	eng := engine.New(conversation.NewStore(), client, engine.Callbacks{
		OnProgress: s.onProgress,
		OnComplete: s.onComplete,
		OnFailed:   s.onFailed,
	}, engine.Options{
		ProgressInterval:  time.Duration(cfg.Stream.ProgressIntervalMS) * time.Millisecond,
		Model:             cfg.DefaultModel,
		ExtraInstructions: cfg.Stream.ExtraInstructions,
		Logger:            logger,
	})
	s.Manager = session.NewManager(eng)

	return s
}

// =============================================================================
// STREAM OUTPUT
// =============================================================================

func (s *ChatSession) onProgress(id int64, accumulated string) {
	// Emissions carry the full text; print just the unseen suffix.
	if len(accumulated) > s.printed {
		fmt.Print(accumulated[s.printed:])
		s.printed = len(accumulated)
	}
}

func (s *ChatSession) onComplete(id int64, finalText string) {
	if len(finalText) > s.printed {
		fmt.Print(finalText[s.printed:])
	}
	fmt.Println()

	// Re-render the whole answer as markdown on a TTY.
	if s.renderer != nil && strings.TrimSpace(finalText) != "" {
		if rendered, err := s.renderer.Render(finalText); err == nil {
			fmt.Println(infoStyle.Render("---"))
			fmt.Print(rendered)
		}
	}
}

func (s *ChatSession) onFailed(id int64, reason error) {
	fmt.Println()
	if errors.Is(reason, context.Canceled) {
		fmt.Fprintln(os.Stderr, warningStyle.Render("[Cancelled]")+
			infoStyle.Render(" partial answer kept"))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), reason)
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command with full interactive support.
func HandleChat(args Args) error {
	s := NewChatSession(args)
	defer telemetry.Sync(s.logger)

	ctx := context.Background()
	if err := s.Client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("exploration server is not reachable at %s: %w",
			s.Config.Server.BaseURL, err)
	}

	if !s.Quiet {
		printWelcome(s)
	}

	input := NewChatCLI()
	defer input.Close()

	// First Ctrl+C cancels the in-flight answer, it never kills the REPL.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			s.Manager.Engine().Stop()
		}
	}()

	for {
		line, err := input.ReadInput(promptStyle.Render("delve> "))
		if err != nil {
			// Ctrl+C at the prompt, EOF (Ctrl+D), or a read error all
			// end the session.
			fmt.Println()
			printExitSummary(s)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			cont, err := handleSlashCommand(line, s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !cont {
				printExitSummary(s)
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			printExitSummary(s)
			return nil
		}

		s.processQuestion(ctx, line)
	}
}

// processQuestion drives one question to completion, blocking until the
// stream ends. Stream output happens in the engine callbacks.
func (s *ChatSession) processQuestion(ctx context.Context, question string) {
	s.printed = 0
	s.Manager.RecordActivity()

	fmt.Println()
	start := time.Now()
	id, err := s.Manager.Engine().Ask(ctx, question)
	fmt.Println()

	if err != nil {
		// Stream failures were already reported by the OnFailed callback;
		// only synchronous rejections need a message here.
		if errors.Is(err, conversation.ErrConcurrentStream) || errors.Is(err, conversation.ErrEmptyPrompt) {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
		return
	}

	if !s.Quiet {
		fmt.Println(infoStyle.Render(fmt.Sprintf("[#%s | %s]",
			formatExchangeID(id), session.FormatDuration(time.Since(start)))))
		fmt.Println()
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand executes a /command. Returns false to exit the REPL.
func handleSlashCommand(cmd string, s *ChatSession) (bool, error) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/help", "/h":
		printHelp()
		return true, nil
	case "/status", "/s":
		printStatus(s)
		return true, nil
	case "/history":
		printHistory(s)
		return true, nil
	case "/new":
		prev := s.Manager.StartNew()
		fmt.Println(infoStyle.Render(fmt.Sprintf(
			"Started a new session (previous: %d exchanges in %s).",
			prev.Exchanges, session.FormatDuration(prev.Duration))))
		return true, nil
	case "/quit", "/q", "/exit":
		return false, nil
	default:
		return true, fmt.Errorf("unknown command %q (try /help)", cmd)
	}
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

func printWelcome(s *ChatSession) {
	fmt.Println(welcomeStyle.Render("delve") + infoStyle.Render(" "+Version))
	fmt.Println(infoStyle.Render("Server: ") + commandStyle.Render(s.Config.Server.BaseURL) +
		infoStyle.Render("  Model: ") + commandStyle.Render(s.Config.DefaultModel))
	fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()
}

func printHelp() {
	fmt.Println(summaryHeaderStyle.Render("Commands"))
	fmt.Println(commandStyle.Render("  /help, /h    ") + infoStyle.Render("Show this help"))
	fmt.Println(commandStyle.Render("  /status, /s  ") + infoStyle.Render("Show session statistics"))
	fmt.Println(commandStyle.Render("  /history     ") + infoStyle.Render("Show the conversation path"))
	fmt.Println(commandStyle.Render("  /new         ") + infoStyle.Render("Start a fresh session"))
	fmt.Println(commandStyle.Render("  /quit, /q    ") + infoStyle.Render("Exit chat"))
	fmt.Println(infoStyle.Render("  Ctrl+C cancels the current answer, Ctrl+D exits."))
}

func printStatus(s *ChatSession) {
	sum := s.Manager.Summarize()
	fmt.Println(summaryHeaderStyle.Render("Session"))
	fmt.Println(infoStyle.Render("  ID:        ") + sum.SessionID)
	fmt.Println(infoStyle.Render("  Duration:  ") + session.FormatDuration(sum.Duration))
	fmt.Printf("%s %d (%d complete, %d failed)\n",
		infoStyle.Render("  Exchanges:"), sum.Exchanges, sum.Completed, sum.Failed)
	if sum.RootID != 0 {
		fmt.Println(infoStyle.Render("  Root:      ") + "#" + formatExchangeID(sum.RootID))
	}
}

func printHistory(s *ChatSession) {
	store := s.Manager.Store()
	path := store.CurrentPath()
	if len(path) == 0 {
		fmt.Println(infoStyle.Render("No questions asked yet."))
		return
	}

	fmt.Println(summaryHeaderStyle.Render("Conversation path"))
	for _, id := range path {
		ex, err := store.Lookup(id)
		if err != nil {
			continue
		}
		marker := " "
		if ex.Status == conversation.StatusFailed {
			marker = warningStyle.Render("!")
		}
		fmt.Printf("  %s #%s %s\n", marker, formatExchangeID(id), ex.Preview(64))
	}
}

func printExitSummary(s *ChatSession) {
	if s.Quiet {
		return
	}
	sum := s.Manager.Summarize()
	fmt.Println(summaryHeaderStyle.Render("Session summary"))
	fmt.Printf("%s %d questions in %s\n",
		infoStyle.Render(" "), sum.Exchanges, session.FormatDuration(sum.Duration))
}

func formatExchangeID(id int64) string {
	if conversation.IsProvisionalID(id) {
		return "?"
	}
	return fmt.Sprintf("%d", id)
}
