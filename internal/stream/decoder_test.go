// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"io"
	"strings"
	"testing"
)

// collect drains a decoder into a slice of fragments.
func collect(t *testing.T, d *Decoder) []string {
	t.Helper()
	var out []string
	for {
		frag, err := d.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		out = append(out, frag)
	}
}

// =============================================================================
// DECODER TESTS
// =============================================================================

func TestDecoder_StripsDataPrefix(t *testing.T) {
	src := "data: hello\n\ndata: world\n\n"
	got := collect(t, NewDecoder(strings.NewReader(src)))

	want := []string{"hello", "world"}
	if len(got) != len(want) {
		t.Fatalf("fragments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDecoder_PassesThroughWithoutPrefix(t *testing.T) {
	// Callers must not assume the framing prefix is always present.
	src := "raw fragment\ndata: framed fragment\n"
	got := collect(t, NewDecoder(strings.NewReader(src)))

	if len(got) != 2 {
		t.Fatalf("fragments = %v, want 2 entries", got)
	}
	if got[0] != "raw fragment" {
		t.Errorf("fragment[0] = %q", got[0])
	}
	if got[1] != "framed fragment" {
		t.Errorf("fragment[1] = %q", got[1])
	}
}

func TestDecoder_PreservesInteriorWhitespace(t *testing.T) {
	// Trailing spaces inside a fragment are part of the answer text.
	src := "data: A closure is \n"
	got := collect(t, NewDecoder(strings.NewReader(src)))

	if len(got) != 1 || got[0] != "A closure is " {
		t.Fatalf("fragments = %q, want [%q]", got, "A closure is ")
	}
}

func TestDecoder_SkipsBlankKeepAlives(t *testing.T) {
	src := "\n\r\n\ndata: x\n\n"
	got := collect(t, NewDecoder(strings.NewReader(src)))

	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("fragments = %v, want [x]", got)
	}
}

func TestDecoder_FinalLineWithoutNewline(t *testing.T) {
	src := "data: first\ndata: last"
	got := collect(t, NewDecoder(strings.NewReader(src)))

	if len(got) != 2 || got[1] != "last" {
		t.Fatalf("fragments = %v, want [first last]", got)
	}
}

func TestDecoder_SkipsUndecodableFragment(t *testing.T) {
	// One fragment of invalid UTF-8 must never abort the stream.
	src := "data: good\ndata: \xff\xfe\xfd\ndata: also good\n"
	d := NewDecoder(strings.NewReader(src))
	got := collect(t, d)

	if len(got) != 2 {
		t.Fatalf("fragments = %v, want 2 entries", got)
	}
	if got[0] != "good" || got[1] != "also good" {
		t.Errorf("fragments = %v", got)
	}
	if d.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", d.Skipped())
	}
}

func TestDecoder_NotRestartable(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: only\n"))
	collect(t, d)

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next() after EOF = %v, want io.EOF", err)
	}
}

func TestDecoder_TransportErrorMidStream(t *testing.T) {
	d := NewDecoder(io.MultiReader(
		strings.NewReader("data: ok\n"),
		&failingReader{},
	))

	frag, err := d.Next()
	if err != nil || frag != "ok" {
		t.Fatalf("Next() = %q, %v", frag, err)
	}

	_, err = d.Next()
	if !IsTransportError(err) {
		t.Errorf("mid-stream read failure should be transport-typed, got %v", err)
	}
}

func TestDecoder_Process(t *testing.T) {
	var got []string
	d := NewDecoder(strings.NewReader("data: a\ndata: b\n"))
	err := d.Process(context.Background(), func(f string) { got = append(got, f) })
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("fragments = %v", got)
	}
}

func TestDecoder_ProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDecoder(strings.NewReader("data: a\n"))
	if err := d.Process(ctx, func(string) {}); err != context.Canceled {
		t.Errorf("Process() = %v, want context.Canceled", err)
	}
}

// failingReader fails every read with a non-EOF error.
type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
