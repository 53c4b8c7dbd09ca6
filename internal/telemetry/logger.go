// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry provides structured logging for delve.
//
// Logs go to a file under the config directory, never to the terminal:
// both the TUI and the REPL own the screen, and stray log lines would
// corrupt their output.
package telemetry

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/delvehq/delve-tui/internal/config"
)

// LogFileName is the log file created under the config directory.
const LogFileName = "delve.log"

// NewLogger creates a file-backed structured logger. Verbose enables
// debug-level output. When the log file cannot be set up the returned
// logger is a no-op rather than an error: logging must never keep the
// client from starting.
func NewLogger(verbose bool) *zap.Logger {
	dir, err := config.ConfigDir()
	if err != nil {
		return zap.NewNop()
	}
	if err := config.EnsureConfigDir(); err != nil {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, LogFileName)}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes buffered log entries. Safe to call on any logger.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	// Sync on a file target can still fail at shutdown; nothing to do.
	_ = logger.Sync()
}
