// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the lifetime of one exploration session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/delvehq/delve-tui/internal/conversation"
	"github.com/delvehq/delve-tui/internal/engine"
	"github.com/delvehq/delve-tui/internal/util"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager ties a session identity to the conversation store and the
// engine it belongs to. Starting a new session resets both together, so
// the store's path and the engine's server-side chat binding can never
// disagree about which conversation they describe.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	eng *engine.Engine
}

// NewManager creates a manager wrapping the given engine.
func NewManager(eng *engine.Engine) *Manager {
	now := time.Now()
	return &Manager{
		sessionID:    uuid.New().String(),
		startTime:    now,
		lastActivity: now,
		eng:          eng,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StartTime returns when the current session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long the current session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since the last recorded activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// RecordActivity updates the last activity timestamp.
// Called on user input.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
}

// Engine returns the engine this session drives.
func (m *Manager) Engine() *engine.Engine {
	return m.eng
}

// Store returns the conversation store of the current session.
func (m *Manager) Store() *conversation.Store {
	return m.eng.Store()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// StartNew abandons the current conversation and starts a fresh session.
// Any in-flight stream is stopped first. The previous session's summary
// is returned so the caller can display it.
func (m *Manager) StartNew() Summary {
	m.eng.Stop()
	summary := m.Summarize()

	m.eng.Store().Reset()
	m.eng.Reset()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = uuid.New().String()
	now := time.Now()
	m.startTime = now
	m.lastActivity = now

	return summary
}

// =============================================================================
// SESSION SUMMARY
// =============================================================================

// Summary describes a session for display at exit or on reset.
type Summary struct {
	SessionID string
	Duration  time.Duration
	Exchanges int
	Completed int
	Failed    int
	RootID    int64 // zero when the session asked nothing
}

// Summarize returns a snapshot summary of the current session.
func (m *Manager) Summarize() Summary {
	store := m.eng.Store()

	m.mu.Lock()
	sessionID := m.sessionID
	duration := time.Since(m.startTime)
	m.mu.Unlock()

	s := Summary{
		SessionID: sessionID,
		Duration:  duration,
	}
	if rootID, ok := store.RootID(); ok {
		s.RootID = rootID
	}

	for _, id := range store.CurrentPath() {
		ex, err := store.Lookup(id)
		if err != nil {
			continue
		}
		s.Exchanges++
		switch ex.Status {
		case conversation.StatusComplete:
			s.Completed++
		case conversation.StatusFailed:
			s.Failed++
		}
	}
	return s
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
