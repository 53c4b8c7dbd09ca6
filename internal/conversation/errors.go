// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for store operations.
// Use errors.Is(err, ...) to check for these errors.
var (
	// ErrExchangeNotFound is returned when an id does not resolve.
	ErrExchangeNotFound = &StoreError{Message: "exchange not found"}

	// ErrConcurrentStream is returned by StartExchange while another
	// exchange is still in flight. The store is not mutated.
	ErrConcurrentStream = &StoreError{Message: "another exchange is still streaming"}

	// ErrEmptyPrompt is returned by StartExchange for a blank prompt.
	ErrEmptyPrompt = &StoreError{Message: "prompt text is empty"}

	// ErrReconciliationMiss is returned when an identifier assignment
	// arrives with no in-flight exchange to rename. Non-fatal: the event
	// is dropped and the stream continues under the stale id.
	ErrReconciliationMiss = &StoreError{Message: "no in-flight exchange to reconcile"}

	// ErrDurableIDTaken is returned when the durable id is already bound
	// to a different exchange. Non-fatal, the event is dropped.
	ErrDurableIDTaken = &StoreError{Message: "durable id already bound to another exchange"}
)

// StoreError represents a conversation-store error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
