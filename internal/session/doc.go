// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates conversation state between the aide backend
// and the local store.
//
// The Manager is the single writer of conversation state: it bootstraps
// from the backend, tracks the current selection, lazily loads history,
// and runs message exchanges. The presentation layer observes it through
// snapshot accessors and change hooks, never by reaching into shared
// state.
//
// # Key Types
//
//   - Manager: The synchronization controller for conversation state
//   - Gateway: The backend surface the manager drives (satisfied by api.Client)
//   - Hooks: Presentation callbacks fired as state changes
//
// # Usage
//
// Wire a manager and bring it up:
//
//	mgr := session.NewManager(store.NewStore(), client).
//		WithHooks(session.Hooks{OnError: showToast}).
//		WithLogger(logger)
//	if err := mgr.Bootstrap(ctx); err != nil {
//		// backend unreachable and no conversation could be created
//	}
//
// Run an exchange against the current conversation:
//
//	err := mgr.Send(ctx, input)
//	switch {
//	case errors.Is(err, session.ErrSendInFlight):
//		// previous exchange still running; input stays gated
//	case err != nil:
//		// the transcript already carries a synthetic error reply
//	}
//
// # Concurrency
//
// One send may be in flight at a time, globally. History fetches are
// deduplicated per conversation id: concurrent switches to the same
// conversation share a single request and a single outcome. The manager's
// lock is never held across a network call, and every continuation
// re-validates its target conversation before writing, so a conversation
// deleted mid-request turns the late result into a no-op.
package session
