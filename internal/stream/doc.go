// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides the HTTP transport and wire decoding for the
// delve exploration server.
//
// The server answers a question as a server-sent-event style byte stream:
// newline-delimited frames, each optionally prefixed with a "data:" token,
// carrying either a JSON record (text payload, durable message id, error)
// or a raw text fragment. This package turns that byte stream into a lazy
// sequence of classified events:
//
//	client.StreamQuestion -> Decoder (fragments) -> Parser (events)
//
// Decode and parse failures on individual fragments are never fatal to the
// stream; only transport-level failures terminate it.
package stream
