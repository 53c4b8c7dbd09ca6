// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"testing"
)

// =============================================================================
// EVENT PARSER TESTS
// =============================================================================

func TestParser_RawTextFragment(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse("A closure is ")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %v, want 1 entry", events)
	}

	tf, ok := events[0].(TextFragment)
	if !ok {
		t.Fatalf("event type = %T, want TextFragment", events[0])
	}
	if tf.Text != "A closure is " {
		t.Errorf("Text = %q, raw string must be carried verbatim", tf.Text)
	}
}

func TestParser_StructuredRecord(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse(`{"chat_id": "abc", "message": "hello", "llm_metadata": {"model": "gpt-4o-mini"}}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %v, want 1 entry", events)
	}

	se, ok := events[0].(StructuredEvent)
	if !ok {
		t.Fatalf("event type = %T, want StructuredEvent", events[0])
	}
	if se.Text != "hello" {
		t.Errorf("Text = %q, want %q", se.Text, "hello")
	}
	if se.ChatID != "abc" {
		t.Errorf("ChatID = %q, want %q", se.ChatID, "abc")
	}
}

func TestParser_IdentifierBeforeText(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse(`{"chat_message_id": 4821, "message": "payload"}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %v, want 2 entries", events)
	}

	ia, ok := events[0].(IdentifierAssigned)
	if !ok {
		t.Fatalf("event[0] type = %T, want IdentifierAssigned", events[0])
	}
	if ia.ID != 4821 {
		t.Errorf("ID = %d, want 4821", ia.ID)
	}

	se, ok := events[1].(StructuredEvent)
	if !ok {
		t.Fatalf("event[1] type = %T, want StructuredEvent", events[1])
	}
	if se.Text != "payload" {
		t.Errorf("Text = %q, want %q", se.Text, "payload")
	}
}

func TestParser_IdentifierAsQuotedString(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse(`{"chat_message_id": "77"}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %v, want 1 entry", events)
	}
	if ia := events[0].(IdentifierAssigned); ia.ID != 77 {
		t.Errorf("ID = %d, want 77", ia.ID)
	}
}

func TestParser_LegacyMarkerString(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		wantID   int64
	}{
		{"plain marker", "chat_message_id: 9", 9},
		{"no space after colon", "chat_message_id:4821", 4821},
		{"extra whitespace", "  chat_message_id :  15  ", 15},
	}

	p := NewParser(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			events, err := p.Parse(tc.fragment)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("events = %v, want 1 entry", events)
			}
			ia, ok := events[0].(IdentifierAssigned)
			if !ok {
				t.Fatalf("event type = %T, want IdentifierAssigned", events[0])
			}
			if ia.ID != tc.wantID {
				t.Errorf("ID = %d, want %d", ia.ID, tc.wantID)
			}
		})
	}
}

func TestParser_MarkerWithoutNumberIsText(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse("chat_message_id: pending")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := events[0].(TextFragment); !ok {
		t.Errorf("event type = %T, want TextFragment", events[0])
	}
}

func TestParser_MalformedRecordBecomesText(t *testing.T) {
	// Parse failures on individual fragments are not stream-fatal.
	p := NewParser(nil)

	events, err := p.Parse(`{"message": "unterminated`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %v, want 1 entry", events)
	}
	tf, ok := events[0].(TextFragment)
	if !ok {
		t.Fatalf("event type = %T, want TextFragment", events[0])
	}
	if tf.Text != `{"message": "unterminated` {
		t.Errorf("Text = %q, raw fragment must survive", tf.Text)
	}
}

func TestParser_ErrorFrameIsTransportFatal(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse(`{"error": "model overloaded"}`)
	if !IsTransportError(err) {
		t.Fatalf("error frame should be transport-typed, got %v", err)
	}
	if err.Error() != "model overloaded" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParser_EmptyFragmentYieldsNothing(t *testing.T) {
	p := NewParser(nil)

	events, err := p.Parse("   ")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
}
