// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the conversation store: the mapping of
// exchange id to exchange, the linear navigation path, and the root/current
// pointers, together with the identifier reconciler that renames a
// provisional exchange id to the durable id issued by the server.
//
// The store is the only mutable shared state in the engine. All mutations
// go through exported methods that take the store lock, so the store can be
// read from the UI loop while the fragment loop is writing.
package conversation
