// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the delve command line interface.
//
// The binary dispatches to one of a small set of commands:
//
//	delve            Start the TUI (default)
//	delve chat       Plain REPL chat, for terminals without TUI support
//	delve status     Check exploration server reachability
//	delve config     Show the active configuration
//	delve version    Print version information
//
// Global flags:
//
//	-m, --model NAME   Override the configured model
//	--server URL       Override the exploration server URL
//	--extra TEXT       Extra instructions sent with every question
//	-q, --quiet        Minimal output
//	-v, --verbose      Debug logging
package cli
