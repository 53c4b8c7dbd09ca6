// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"time"

	"github.com/delvehq/delve-tui/internal/util"
)

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status represents the lifecycle state of an exchange.
type Status string

const (
	// StatusPending means the prompt was submitted but no fragment has arrived.
	StatusPending Status = "pending"

	// StatusStreaming means fragments are being accumulated into the answer.
	StatusStreaming Status = "streaming"

	// StatusComplete means the source stream ended normally.
	StatusComplete Status = "complete"

	// StatusFailed means the stream errored or was cancelled. Any text
	// accumulated before the failure is retained.
	StatusFailed Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the exchange can no longer receive updates.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// =============================================================================
// EXCHANGE TYPE
// =============================================================================

// Exchange is one prompt/answer pair tracked by the engine.
//
// The canonical copy lives inside the Store; Lookup hands out snapshots so
// no other component can mutate an exchange behind the store's back.
type Exchange struct {
	// Identity. Provisional until the reconciler renames it to the
	// server-issued durable id.
	ID int64 `json:"id"`

	// PromptText is immutable once set.
	PromptText string `json:"prompt_text"`

	// AnswerText grows monotonically while streaming and is replaced
	// wholesale by each accumulator emission.
	AnswerText string `json:"answer_text"`

	// Status tracks the exchange lifecycle.
	Status Status `json:"status"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preview returns a single-line preview of the prompt for list displays.
func (e *Exchange) Preview(maxRunes int) string {
	return util.SingleLine(util.TruncateRunes(e.PromptText, maxRunes))
}

// IsInFlight returns true while the exchange may still receive stream updates.
func (e *Exchange) IsInFlight() bool {
	return !e.Status.IsTerminal()
}
