// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives one answer stream at a time through the pipeline:
//
//	transport -> decoder -> parser -> {reconciler | accumulator} -> store
//
// Every fragment is processed to completion before the next one is read,
// so store mutations and outbound notifications are totally ordered with
// fragment arrival. Progress notifications are throttled; the text itself
// never is.
package engine
