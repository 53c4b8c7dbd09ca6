// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MarkerKey is the record field (and legacy marker-string key) whose value
// is the durable exchange identifier issued by the server.
const MarkerKey = "chat_message_id"

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event is one classified unit from the fragment stream.
type Event interface {
	isEvent()
}

// TextFragment carries a raw text fragment that did not parse as a
// structured record. The text is appended to the answer verbatim.
type TextFragment struct {
	Text string
}

// StructuredEvent carries the text payload of a parsed record.
type StructuredEvent struct {
	ChatID   string
	Text     string
	Metadata json.RawMessage
}

// IdentifierAssigned reports the durable id the server bound to the
// exchange currently streaming.
type IdentifierAssigned struct {
	ID int64
}

func (TextFragment) isEvent()       {}
func (StructuredEvent) isEvent()    {}
func (IdentifierAssigned) isEvent() {}

// =============================================================================
// EVENT PARSER
// =============================================================================

// record is the wire shape of a structured frame.
type record struct {
	ChatID        string          `json:"chat_id,omitempty"`
	ChatMessageID json.RawMessage `json:"chat_message_id,omitempty"`
	Message       string          `json:"message,omitempty"`
	Content       string          `json:"content,omitempty"`
	Error         string          `json:"error,omitempty"`
	Metadata      json.RawMessage `json:"llm_metadata,omitempty"`
}

// Parser classifies decoded fragments into events.
//
// Classification attempts a structured parse first; fragments that fail it
// are yielded as raw text, never dropped. Events come out strictly in
// arrival order with no buffering beyond the fragment being classified.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser. A nil logger disables logging.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse classifies one fragment into zero or more events.
//
// A structured record that names the durable identifier yields
// IdentifierAssigned ahead of its text payload. A record carrying a server
// error field returns a transport-typed error, which terminates the
// stream. Everything else is recovered locally.
func (p *Parser) Parse(fragment string) ([]Event, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var rec record
		err := json.Unmarshal([]byte(trimmed), &rec)
		if err == nil {
			return p.recordEvents(rec)
		}
		// ParseError policy: log and fall through to raw text.
		p.logger.Warn("fragment not parseable as structured record",
			zap.Error(&StreamError{Type: ErrTypeParse, Message: "malformed record", Cause: err}))
	}

	// Legacy compatibility: a bare marker string ("chat_message_id: 4821")
	// assigns the durable identifier.
	if id, ok := parseMarker(trimmed); ok {
		return []Event{IdentifierAssigned{ID: id}}, nil
	}

	return []Event{TextFragment{Text: fragment}}, nil
}

// recordEvents expands a parsed record into its event sequence.
func (p *Parser) recordEvents(rec record) ([]Event, error) {
	if rec.Error != "" {
		return nil, &StreamError{Type: ErrTypeTransport, Message: rec.Error}
	}

	var events []Event
	if id, ok := parseRecordID(rec.ChatMessageID); ok {
		events = append(events, IdentifierAssigned{ID: id})
	}

	text := rec.Message
	if text == "" {
		text = rec.Content
	}
	if text != "" {
		events = append(events, StructuredEvent{
			ChatID:   rec.ChatID,
			Text:     text,
			Metadata: rec.Metadata,
		})
	}
	return events, nil
}

// parseMarker extracts the durable id from the legacy marker-string form.
func parseMarker(s string) (int64, bool) {
	rest, ok := strings.CutPrefix(s, MarkerKey)
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), ":")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseRecordID extracts the durable id from a record field, which the
// server has emitted both as a JSON number and as a quoted string.
func parseRecordID(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
