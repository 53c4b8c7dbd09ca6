// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view is a Bubble Tea model wrapping one exploration session: a
// viewport over the conversation, a path bar showing the exchange ids,
// a text input, and a status bar. Stream events reach the model through
// a channel bridged into Bubble Tea messages, so all rendering happens
// on the update loop.
package chat
