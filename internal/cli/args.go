// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
)

// Version information, set by main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which handler to dispatch to.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed command line options.
type Args struct {
	// Model overrides the configured model when non-empty.
	Model string

	// ServerURL overrides the configured exploration server when non-empty.
	ServerURL string

	// Extra instructions sent with every question.
	Extra string

	Quiet   bool
	Verbose bool
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads os.Args and returns the command and its options.
// Unknown flags are ignored rather than fatal; the handlers print their
// own usage on demand.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

func parse(raw []string) (Command, Args) {
	cmd := CmdTUI
	var args Args

	i := 0
	if len(raw) > 0 && !strings.HasPrefix(raw[0], "-") {
		switch raw[0] {
		case "chat":
			cmd = CmdChat
		case "status":
			cmd = CmdStatus
		case "config":
			cmd = CmdConfig
		case "version":
			cmd = CmdVersion
		case "help":
			cmd = CmdHelp
		default:
			cmd = CmdHelp
		}
		i = 1
	}

	for ; i < len(raw); i++ {
		arg := raw[i]
		name, value, hasValue := splitFlag(arg)

		switch name {
		case "m", "model":
			if !hasValue {
				value, i = nextValue(raw, i)
			}
			args.Model = value
		case "server":
			if !hasValue {
				value, i = nextValue(raw, i)
			}
			args.ServerURL = value
		case "extra":
			if !hasValue {
				value, i = nextValue(raw, i)
			}
			args.Extra = value
		case "q", "quiet":
			args.Quiet = true
		case "v", "verbose":
			args.Verbose = true
		case "version":
			cmd = CmdVersion
		case "h", "help":
			cmd = CmdHelp
		}
	}

	return cmd, args
}

// splitFlag normalizes "--flag=value", "--flag" and "-f" forms.
func splitFlag(arg string) (name, value string, hasValue bool) {
	if !strings.HasPrefix(arg, "-") {
		return "", "", false
	}
	arg = strings.TrimLeft(arg, "-")
	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		return arg[:eq], arg[eq+1:], true
	}
	return arg, "", false
}

// nextValue consumes the following argument as a flag value, if present.
func nextValue(raw []string, i int) (string, int) {
	if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
		return raw[i+1], i + 1
	}
	return "", i
}
