// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want Command
	}{
		{"default is tui", []string{}, CmdTUI},
		{"chat", []string{"chat"}, CmdChat},
		{"status", []string{"status"}, CmdStatus},
		{"config", []string{"config"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"unknown command", []string{"frobnicate"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := parse(tt.raw)
			if got != tt.want {
				t.Errorf("parse(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	cmd, args := parse([]string{"chat", "--model", "gpt-4o", "--server=http://host:9000", "-q"})

	if cmd != CmdChat {
		t.Errorf("cmd = %v, want CmdChat", cmd)
	}
	if args.Model != "gpt-4o" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.ServerURL != "http://host:9000" {
		t.Errorf("ServerURL = %q", args.ServerURL)
	}
	if !args.Quiet {
		t.Error("Quiet not set")
	}
	if args.Verbose {
		t.Error("Verbose should not be set")
	}
}

func TestParseShortModelFlag(t *testing.T) {
	_, args := parse([]string{"-m", "gpt-4o-mini", "--extra", "be brief"})
	if args.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.Extra != "be brief" {
		t.Errorf("Extra = %q", args.Extra)
	}
}

func TestParseFlagMissingValue(t *testing.T) {
	_, args := parse([]string{"--model"})
	if args.Model != "" {
		t.Errorf("Model = %q, want empty for dangling flag", args.Model)
	}
}
