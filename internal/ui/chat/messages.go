// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/delvehq/delve-tui/internal/session"

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamProgressMsg delivers the full accumulated answer text while an
// exchange streams. Emission cadence is bounded by the engine's throttle.
type StreamProgressMsg struct {
	ID          int64
	Accumulated string
}

// StreamCompleteMsg signals that an exchange finished streaming.
type StreamCompleteMsg struct {
	ID        int64
	FinalText string
}

// StreamFailedMsg signals that an exchange's stream errored or was
// cancelled. Text accumulated before the failure is retained in the store.
type StreamFailedMsg struct {
	ID     int64
	Reason error
}

// AskRejectedMsg signals that a question was rejected before any stream
// started (empty prompt, or another exchange still in flight).
type AskRejectedMsg struct {
	Err error
}

// =============================================================================
// SERVER MESSAGES
// =============================================================================

// ServerStatusMsg reports exploration server reachability.
type ServerStatusMsg struct {
	Running bool
	Err     error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionResetMsg reports that a fresh session was started, carrying the
// summary of the one just abandoned.
type SessionResetMsg struct {
	Previous session.Summary
}
