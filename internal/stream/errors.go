// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// StreamError represents an error from the transport or decoding layers.
type StreamError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes stream errors for handling.
//
// Only transport errors are fatal to a stream. Decode and parse errors are
// recovered fragment-locally: losing a whole answer to one malformed
// fragment is strictly worse than a best-effort merge.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeTransport: the stream could not be opened or the body became
	// unreadable. Fatal to the current stream.
	ErrTypeTransport

	// ErrTypeDecode: one fragment was unreadable as text. The fragment is
	// skipped and the stream continues.
	ErrTypeDecode

	// ErrTypeParse: one fragment was not parseable as a structured record.
	// The fragment is treated as raw text and the stream continues.
	ErrTypeParse
)

// Sentinel errors for easy checking.
var (
	ErrServerUnreachable = &StreamError{Type: ErrTypeTransport, Message: "exploration server is unreachable"}
	ErrStreamRejected    = &StreamError{Type: ErrTypeTransport, Message: "server rejected the stream request"}
)

// IsTransportError checks if an error is fatal to the stream.
func IsTransportError(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Type == ErrTypeTransport
	}
	return false
}

// IsDecodeError checks if an error is a fragment decode error.
func IsDecodeError(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Type == ErrTypeDecode
	}
	return false
}

// IsParseError checks if an error is a fragment parse error.
func IsParseError(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Type == ErrTypeParse
	}
	return false
}
