// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
	"unicode/utf8"
)

// DataPrefix is the framing token the server puts in front of each frame.
// Callers must not assume it is always present: fragments without the
// prefix pass through unchanged.
const DataPrefix = "data:"

// =============================================================================
// CHUNK DECODER
// =============================================================================

// Decoder turns a raw byte stream into a lazy sequence of text fragments.
//
// The sequence is finite (it ends when the source ends) and not
// restartable: a new transport call makes a new Decoder.
type Decoder struct {
	reader  *bufio.Reader
	prefix  string
	skipped int
	done    bool
}

// NewDecoder creates a decoder that strips the standard "data:" framing.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderWithPrefix(r, DataPrefix)
}

// NewDecoderWithPrefix creates a decoder with a custom framing prefix.
// An empty prefix disables stripping.
func NewDecoderWithPrefix(r io.Reader, prefix string) *Decoder {
	return &Decoder{
		reader: bufio.NewReader(r),
		prefix: prefix,
	}
}

// Next returns the next decoded fragment.
//
// Returns io.EOF when the source is exhausted, and a transport-typed
// StreamError if the body becomes unreadable mid-stream. Fragments that do
// not decode as text are skipped, never aborting the whole stream for one
// bad fragment.
func (d *Decoder) Next() (string, error) {
	if d.done {
		return "", io.EOF
	}

	for {
		line, err := d.reader.ReadString('\n')
		if err != nil {
			d.done = true
			if len(line) == 0 {
				if err == io.EOF {
					return "", io.EOF
				}
				return "", &StreamError{Type: ErrTypeTransport, Message: "stream body unreadable", Cause: err}
			}
			if err != io.EOF {
				return "", &StreamError{Type: ErrTypeTransport, Message: "stream body unreadable", Cause: err}
			}
			// Process the final unterminated line on EOF.
		}

		fragment, ok := d.decodeLine(line)
		if !ok {
			if d.done {
				return "", io.EOF
			}
			continue
		}
		return fragment, nil
	}
}

// decodeLine strips framing from one raw line. Returns false for lines
// that yield no fragment (keep-alive blanks, undecodable bytes).
func (d *Decoder) decodeLine(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	// Blank keep-alive frame.
	if line == "" {
		return "", false
	}

	// DecodeError policy: skip the malformed fragment and continue.
	if !utf8.ValidString(line) {
		d.skipped++
		return "", false
	}

	if d.prefix != "" && strings.HasPrefix(line, d.prefix) {
		line = line[len(d.prefix):]
		// The framing convention allows a single space after the token.
		line = strings.TrimPrefix(line, " ")
	}
	return line, true
}

// Process reads the whole stream and calls the callback for each fragment.
// Blocks until the stream is complete or the context is cancelled.
func (d *Decoder) Process(ctx context.Context, callback func(fragment string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			fragment, err := d.Next()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			callback(fragment)
		}
	}
}

// Skipped returns the number of fragments dropped as undecodable.
func (d *Decoder) Skipped() int {
	return d.skipped
}
