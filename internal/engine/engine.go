// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/delvehq/delve-tui/internal/conversation"
	"github.com/delvehq/delve-tui/internal/stream"
)

// =============================================================================
// CALLBACKS
// =============================================================================

// Callbacks are the engine's outbound signals to the caller / view layer.
// Nil callbacks are simply skipped. All callbacks fire from the fragment
// loop goroutine, in fragment arrival order.
type Callbacks struct {
	// OnProgress delivers the full accumulated text while streaming,
	// at most once per progress interval.
	OnProgress func(id int64, accumulated string)

	// OnComplete delivers the final text exactly once per successful stream.
	OnComplete func(id int64, finalText string)

	// OnFailed reports a terminated stream. Text accumulated before the
	// failure is retained in the store; the view should render it with an
	// incomplete marker rather than discard it.
	OnFailed func(id int64, reason error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Options configures an Engine.
type Options struct {
	// ProgressInterval bounds progress notification cadence
	// (default: DefaultProgressInterval).
	ProgressInterval time.Duration

	// Model passed through to the server on each question.
	Model string

	// ExtraInstructions passed through to the server on each question.
	ExtraInstructions string

	// Logger for recovered (non-fatal) stream conditions.
	Logger *zap.Logger
}

// Engine owns the streaming loop for one conversation store. It processes
// one stream at a time: a second Ask while one is in flight is rejected
// synchronously with conversation.ErrConcurrentStream.
type Engine struct {
	store  *conversation.Store
	client *stream.Client
	parser *stream.Parser
	logger *zap.Logger

	callbacks Callbacks
	interval  time.Duration
	model     string
	extra     string

	mu     sync.Mutex
	cancel context.CancelFunc
	chatID string // server-side chat id, captured from the first record
}

// New creates an engine bound to a store and a transport client.
func New(store *conversation.Store, client *stream.Client, callbacks Callbacks, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	return &Engine{
		store:     store,
		client:    client,
		parser:    stream.NewParser(logger),
		logger:    logger,
		callbacks: callbacks,
		interval:  interval,
		model:     opts.Model,
		extra:     opts.ExtraInstructions,
	}
}

// Store returns the conversation store the engine mutates.
func (e *Engine) Store() *conversation.Store {
	return e.store
}

// Busy reports whether a stream is currently in flight.
func (e *Engine) Busy() bool {
	id, ok := e.store.CurrentID()
	if !ok {
		return false
	}
	ex, err := e.store.Lookup(id)
	return err == nil && ex.IsInFlight()
}

// =============================================================================
// ASK
// =============================================================================

// Ask submits a prompt and drives its answer stream to completion.
//
// The exchange appears in the store under a provisional id before the
// transport call is made, so the caller's view can show the question
// immediately. Ask blocks until the stream ends; run it in a goroutine
// when the caller must stay responsive. The returned id is the id the
// exchange is known by when Ask returns (durable if the server assigned
// one, provisional otherwise).
func (e *Engine) Ask(ctx context.Context, promptText string) (int64, error) {
	id, err := e.store.StartExchange(promptText)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithCancel(ctx)
	e.setCancel(cancel)
	defer e.clearCancel()
	defer cancel()

	e.logger.Debug("stream starting",
		zap.Int64("provisional_id", id),
		zap.String("prompt", promptText))

	body, err := e.client.StreamQuestion(ctx, stream.QuestionRequest{
		ChatID:            e.currentChatID(),
		Question:          promptText,
		Model:             e.model,
		ExtraInstructions: e.extra,
	})
	if err != nil {
		e.store.FailExchange(id)
		e.fail(id, err)
		return id, err
	}
	defer body.Close()

	return e.consume(ctx, id, body)
}

// Stop cancels the in-flight stream, if any. The transport source is
// closed, the current exchange is marked failed with its partial text
// retained, and a new Ask becomes permitted. Stop is not a rollback.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Reset forgets the server-side chat binding. The session layer calls
// this together with Store.Reset when starting a fresh session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chatID = ""
}

// =============================================================================
// FRAGMENT LOOP
// =============================================================================

// consume runs the single-threaded fragment loop: each fragment is fully
// processed (decode, parse, reconcile/accumulate, store mutation, maybe a
// notification) before the next one is awaited.
func (e *Engine) consume(ctx context.Context, id int64, body io.Reader) (int64, error) {
	acc := NewAccumulator(e.interval)
	dec := stream.NewDecoder(body)

	var streamErr error
	completed := false

	for {
		fragment, err := dec.Next()
		if err == io.EOF {
			completed = true
			break
		}
		if err != nil {
			// A cancelled context surfaces as a body read failure.
			if ctx.Err() != nil {
				streamErr = ctx.Err()
			} else {
				streamErr = err
			}
			break
		}

		events, err := e.parser.Parse(fragment)
		if err != nil {
			// Server-reported failure frame: fatal to this stream.
			streamErr = err
			break
		}

		for _, ev := range events {
			id = e.apply(id, ev, acc)
		}

		if text, ok := acc.Flush(); ok {
			e.store.UpdateAnswer(id, text)
			e.progress(id, text)
		}
	}

	final := acc.FinalFlush()

	if completed {
		e.store.CompleteExchange(id, final)
		e.complete(id, final)
		e.logger.Debug("stream complete", zap.Int64("id", id), zap.Int("bytes", len(final)))
		return id, nil
	}

	// Failure or cancellation: retain everything accumulated so far.
	if final != "" {
		e.store.UpdateAnswer(id, final)
	}
	e.store.FailExchange(id)
	e.fail(id, streamErr)
	e.logger.Debug("stream failed", zap.Int64("id", id), zap.Error(streamErr))
	return id, streamErr
}

// apply routes one event to the reconciler or the accumulator and returns
// the id the exchange is known by afterwards.
func (e *Engine) apply(id int64, ev stream.Event, acc *Accumulator) int64 {
	switch ev := ev.(type) {
	case stream.IdentifierAssigned:
		newID, err := e.store.Reconcile(ev.ID)
		if err != nil {
			// Dropping the event and continuing under the stale id beats
			// accumulating text against the wrong exchange.
			e.logger.Warn("identifier assignment dropped",
				zap.Int64("durable_id", ev.ID),
				zap.Int64("current_id", id),
				zap.Error(err))
			return id
		}
		return newID

	case stream.StructuredEvent:
		if ev.ChatID != "" {
			e.setChatID(ev.ChatID)
		}
		acc.Append(ev.Text)

	case stream.TextFragment:
		acc.Append(ev.Text)
	}
	return id
}

// =============================================================================
// INTERNAL STATE
// =============================================================================

func (e *Engine) setCancel(cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel = cancel
}

func (e *Engine) clearCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel = nil
}

func (e *Engine) currentChatID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatID
}

func (e *Engine) setChatID(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chatID = chatID
}

func (e *Engine) progress(id int64, text string) {
	if e.callbacks.OnProgress != nil {
		e.callbacks.OnProgress(id, text)
	}
}

func (e *Engine) complete(id int64, text string) {
	if e.callbacks.OnComplete != nil {
		e.callbacks.OnComplete(id, text)
	}
}

func (e *Engine) fail(id int64, reason error) {
	if e.callbacks.OnFailed != nil {
		e.callbacks.OnFailed(id, reason)
	}
}
