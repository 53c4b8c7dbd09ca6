// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// THROTTLED ACCUMULATOR TESTS
// =============================================================================

func TestAccumulator_FirstEmissionIsImmediate(t *testing.T) {
	acc := NewAccumulator(time.Hour)
	acc.Append("hello")

	text, ok := acc.Flush()
	if !ok {
		t.Fatal("first emission should not wait for the throttle window")
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
}

func TestAccumulator_CoalescesWithinWindow(t *testing.T) {
	acc := NewAccumulator(time.Hour)
	acc.Append("a")
	if _, ok := acc.Flush(); !ok {
		t.Fatal("first flush should emit")
	}

	// Everything inside the window coalesces into the next emission.
	acc.Append("b")
	acc.Append("c")
	if _, ok := acc.Flush(); ok {
		t.Fatal("second flush inside the window should be suppressed")
	}

	if got := acc.FinalFlush(); got != "abc" {
		t.Errorf("FinalFlush = %q, want %q (no fragment text may be dropped)", got, "abc")
	}
}

func TestAccumulator_EmitsAgainAfterWindow(t *testing.T) {
	acc := NewAccumulator(20 * time.Millisecond)
	acc.Append("a")
	acc.Flush()

	acc.Append("b")
	time.Sleep(30 * time.Millisecond)

	text, ok := acc.Flush()
	if !ok {
		t.Fatal("flush after the window elapsed should emit")
	}
	if text != "ab" {
		t.Errorf("text = %q, want full accumulated text %q", text, "ab")
	}
}

func TestAccumulator_NoPendingNoEmission(t *testing.T) {
	acc := NewAccumulator(time.Millisecond)
	if _, ok := acc.Flush(); ok {
		t.Error("flush with no appended text should not emit")
	}

	acc.Append("x")
	acc.Flush()
	time.Sleep(5 * time.Millisecond)
	if _, ok := acc.Flush(); ok {
		t.Error("flush with nothing new since last emission should not emit")
	}
}

func TestAccumulator_FinalFlushUnconditional(t *testing.T) {
	acc := NewAccumulator(time.Hour)
	acc.Append("a")
	acc.Flush()
	acc.Append("b")

	// The window has not elapsed, the final emission fires anyway.
	if got := acc.FinalFlush(); got != "ab" {
		t.Errorf("FinalFlush = %q, want %q", got, "ab")
	}
}

func TestAccumulator_ConcatenationOrder(t *testing.T) {
	fragments := []string{"The ", "quick ", "brown ", "fox ", "jumps"}

	acc := NewAccumulator(time.Nanosecond)
	for _, f := range fragments {
		acc.Append(f)
		acc.Flush()
	}

	want := strings.Join(fragments, "")
	if got := acc.FinalFlush(); got != want {
		t.Errorf("FinalFlush = %q, want %q, independent of throttle timing", got, want)
	}
}

func TestAccumulator_EmptyAppendIgnored(t *testing.T) {
	acc := NewAccumulator(time.Millisecond)
	acc.Append("")
	if _, ok := acc.Flush(); ok {
		t.Error("empty append should not mark text pending")
	}
	if acc.Len() != 0 {
		t.Errorf("Len = %d, want 0", acc.Len())
	}
}
