// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"strings"
	"sync"
	"time"
)

// ProvisionalBase is the start of the reserved id range for locally
// generated provisional ids. Server-issued durable ids are small positive
// integers, so the two id spaces can never collide within a session.
const ProvisionalBase int64 = 1 << 62

// IsProvisionalID reports whether id was generated locally by a Store.
func IsProvisionalID(id int64) bool {
	return id >= ProvisionalBase
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store holds the conversation history for one session: every exchange by
// id, the linear navigation path, and the root/current pointers.
//
// Invariants maintained by every mutation:
//   - every id in path, rootID and currentID resolves in exchanges
//   - path contains no duplicate ids
//   - at most one exchange is in flight at a time
//   - rootID follows the rename when the first exchange is reconciled
type Store struct {
	mu sync.RWMutex

	exchanges map[int64]*Exchange
	path      []int64

	// Pointers. Zero means unset; both id spaces start above zero.
	rootID    int64
	currentID int64

	// Monotonic counter for provisional ids.
	nextProvisional int64
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		exchanges: make(map[int64]*Exchange),
		path:      make([]int64, 0),
	}
}

// =============================================================================
// NAVIGATION OPERATIONS
// =============================================================================

// StartExchange creates a pending exchange for promptText and returns its
// provisional id. The caller sees the new exchange immediately, before the
// server has assigned a durable id.
//
// Starting a new exchange while another is still in flight is a caller
// error: the call is rejected with ErrConcurrentStream and the store is
// left untouched.
func (s *Store) StartExchange(promptText string) (int64, error) {
	if strings.TrimSpace(promptText) == "" {
		return 0, ErrEmptyPrompt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID != 0 {
		if cur, ok := s.exchanges[s.currentID]; ok && cur.IsInFlight() {
			return 0, ErrConcurrentStream
		}
	}

	id := ProvisionalBase + s.nextProvisional
	s.nextProvisional++

	now := time.Now()
	s.exchanges[id] = &Exchange{
		ID:         id,
		PromptText: promptText,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.path = append(s.path, id)
	if s.rootID == 0 {
		s.rootID = id
	}
	s.currentID = id

	return id, nil
}

// Lookup returns a snapshot of the exchange with the given id.
func (s *Store) Lookup(id int64) (Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, ok := s.exchanges[id]
	if !ok {
		return Exchange{}, ErrExchangeNotFound
	}
	return *ex, nil
}

// CurrentPath returns a copy of the ordered sequence of exchange ids.
func (s *Store) CurrentPath() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := make([]int64, len(s.path))
	copy(path, s.path)
	return path
}

// RootID returns the id of the first exchange of the session, if any.
func (s *Store) RootID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootID, s.rootID != 0
}

// CurrentID returns the id of the exchange receiving stream updates, if any.
func (s *Store) CurrentID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID, s.currentID != 0
}

// Len returns the number of exchanges in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// Reset clears all state. Used when the caller explicitly starts a fresh
// session, never for error recovery.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exchanges = make(map[int64]*Exchange)
	s.path = s.path[:0]
	s.rootID = 0
	s.currentID = 0
}

// =============================================================================
// STREAM MUTATIONS
// =============================================================================

// UpdateAnswer replaces the answer text of an in-flight exchange with the
// accumulator's latest emission and moves it to the streaming status.
func (s *Store) UpdateAnswer(id int64, accumulated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[id]
	if !ok {
		return ErrExchangeNotFound
	}
	if ex.Status.IsTerminal() {
		return nil
	}

	ex.AnswerText = accumulated
	ex.Status = StatusStreaming
	ex.UpdatedAt = time.Now()
	return nil
}

// CompleteExchange records the final answer text, marks the exchange
// complete and releases the in-flight slot.
func (s *Store) CompleteExchange(id int64, finalText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[id]
	if !ok {
		return ErrExchangeNotFound
	}

	ex.AnswerText = finalText
	ex.Status = StatusComplete
	ex.UpdatedAt = time.Now()
	if s.currentID == id {
		s.currentID = 0
	}
	return nil
}

// FailExchange marks the exchange failed and releases the in-flight slot.
// Accumulated answer text is retained: partial output is worth more to the
// caller than a clean slate.
func (s *Store) FailExchange(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[id]
	if !ok {
		return ErrExchangeNotFound
	}

	if !ex.Status.IsTerminal() {
		ex.Status = StatusFailed
		ex.UpdatedAt = time.Now()
	}
	if s.currentID == id {
		s.currentID = 0
	}
	return nil
}

// =============================================================================
// IDENTIFIER RECONCILER
// =============================================================================

// Reconcile renames the in-flight exchange from its provisional id to the
// durable id issued by the server. The rename is atomic under the store
// lock: the exchanges key, the path entry, the root pointer and the current
// pointer all repoint together, and no accumulated field is lost.
//
// Delivering the same durable id twice is a no-op. A durable id arriving
// with no in-flight exchange (out-of-order delivery, caller error) is
// dropped and reported via ErrReconciliationMiss; the stream keeps
// accumulating under the stale id, which beats losing text.
//
// Returns the id the current exchange is known by after the call.
func (s *Store) Reconcile(newID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldID := s.currentID
	if oldID == 0 {
		return 0, ErrReconciliationMiss
	}
	if newID == oldID {
		// Duplicate assignment, already reconciled.
		return oldID, nil
	}

	ex, ok := s.exchanges[oldID]
	if !ok {
		return oldID, ErrReconciliationMiss
	}
	if _, taken := s.exchanges[newID]; taken {
		return oldID, ErrDurableIDTaken
	}

	ex.ID = newID
	ex.UpdatedAt = time.Now()
	s.exchanges[newID] = ex
	delete(s.exchanges, oldID)

	for i, id := range s.path {
		if id == oldID {
			s.path[i] = newID
			break
		}
	}
	if s.rootID == oldID {
		s.rootID = newID
	}
	s.currentID = newID

	return newID, nil
}
