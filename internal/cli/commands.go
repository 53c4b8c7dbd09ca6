// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/delvehq/delve-tui/internal/config"
	"github.com/delvehq/delve-tui/internal/stream"
)

// =============================================================================
// STATUS COMMAND
// =============================================================================

// HandleStatus checks exploration server reachability and prints the result.
func HandleStatus(args Args) error {
	cfg := config.Global()
	baseURL := cfg.Server.BaseURL
	if args.ServerURL != "" {
		baseURL = args.ServerURL
	}

	client := stream.NewClientWithConfig(&stream.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := client.CheckRunning(ctx); err != nil {
		fmt.Printf("%s %s\n", errorStyle.Render("[DOWN]"), baseURL)
		if !args.Quiet {
			fmt.Println(infoStyle.Render("  " + err.Error()))
		}
		os.Exit(1)
	}

	fmt.Printf("%s %s %s\n",
		commandStyle.Render("[UP]"),
		baseURL,
		infoStyle.Render(fmt.Sprintf("(%dms)", time.Since(start).Milliseconds())))
	return nil
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig prints the active configuration as TOML.
func HandleConfig(args Args) error {
	cfg := config.Global()

	path, err := config.ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Println(infoStyle.Render("# loaded from " + path))
		} else {
			fmt.Println(infoStyle.Render("# built-in defaults (no file at " + path + ")"))
		}
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// =============================================================================
// VERSION AND HELP
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("delve %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints top-level usage.
func HandleHelp() {
	fmt.Println(welcomeStyle.Render("delve") + infoStyle.Render(" - explore a topic through streamed conversation"))
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Usage"))
	fmt.Println("  delve [command] [flags]")
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Commands"))
	fmt.Println(commandStyle.Render("  (none)   ") + infoStyle.Render("Start the TUI"))
	fmt.Println(commandStyle.Render("  chat     ") + infoStyle.Render("Plain REPL chat"))
	fmt.Println(commandStyle.Render("  status   ") + infoStyle.Render("Check server reachability"))
	fmt.Println(commandStyle.Render("  config   ") + infoStyle.Render("Show active configuration"))
	fmt.Println(commandStyle.Render("  version  ") + infoStyle.Render("Print version information"))
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Flags"))
	fmt.Println(commandStyle.Render("  -m, --model NAME ") + infoStyle.Render("Override the configured model"))
	fmt.Println(commandStyle.Render("  --server URL     ") + infoStyle.Render("Override the server URL"))
	fmt.Println(commandStyle.Render("  --extra TEXT     ") + infoStyle.Render("Extra instructions per question"))
	fmt.Println(commandStyle.Render("  -q, --quiet      ") + infoStyle.Render("Minimal output"))
	fmt.Println(commandStyle.Render("  -v, --verbose    ") + infoStyle.Render("Debug logging"))
}
