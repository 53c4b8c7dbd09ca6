// delve TUI - a terminal client for streamed topic exploration.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/delvehq/delve-tui/internal/cli"
	"github.com/delvehq/delve-tui/internal/config"
	"github.com/delvehq/delve-tui/internal/telemetry"
	"github.com/delvehq/delve-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdChat:
		if err := cli.HandleChat(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdStatus:
		if err := cli.HandleStatus(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
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
	defer telemetry.Sync(logger)

	// Reload config on file edits while the TUI runs. Best effort: the
	// client works fine without the watcher.
	watcher, err := config.NewWatcher(logger, 0, nil)
	if err == nil {
		if err := watcher.Watch(); err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		}
		defer watcher.Close()
	}

	p := tea.NewProgram(
		chat.NewModel(cfg, logger),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running delve: %v\n", err)
		os.Exit(1)
	}
}
