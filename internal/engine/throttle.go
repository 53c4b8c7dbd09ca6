// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultProgressInterval bounds how often progress notifications fire.
const DefaultProgressInterval = 100 * time.Millisecond

// =============================================================================
// THROTTLED ACCUMULATOR
// =============================================================================

// Accumulator merges text fragments into a single growing answer and
// bounds the cadence of progress notifications.
//
// Fragments are appended unconditionally; only notification timing is
// throttled, so no fragment's text is ever dropped. Emissions carry the
// full accumulated text, not deltas, which lets a consumer replace its
// view wholesale instead of re-rendering per fragment.
//
// The throttle window is wall-clock time measured from the last emission
// (a token bucket of depth one), checked whenever the fragment loop asks:
// no timer goroutine is involved.
//
// PERFORMANCE: strings.Builder avoids quadratic allocations
type Accumulator struct {
	mu      sync.Mutex
	buf     strings.Builder
	limiter *rate.Limiter
	pending bool
}

// NewAccumulator creates an accumulator emitting at most once per interval.
// A non-positive interval selects DefaultProgressInterval.
func NewAccumulator(interval time.Duration) *Accumulator {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &Accumulator{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Append adds fragment text to the growing answer.
func (a *Accumulator) Append(text string) {
	if text == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buf.WriteString(text)
	a.pending = true
}

// Flush returns the full accumulated text when a progress notification is
// due: there is unreported text and the throttle window has elapsed since
// the last emission. Fragments received between emissions are coalesced
// into the next one.
func (a *Accumulator) Flush() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.pending {
		return "", false
	}
	if !a.limiter.Allow() {
		return "", false
	}

	a.pending = false
	return a.buf.String(), true
}

// FinalFlush returns the complete accumulated text regardless of how
// recently the last throttled emission fired. Called exactly once when
// the stream ends, so the observed final text always equals the literal
// concatenation of every fragment in arrival order.
func (a *Accumulator) FinalFlush() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = false
	return a.buf.String()
}

// Len returns the number of accumulated bytes.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Len()
}
