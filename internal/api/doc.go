// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP gateway to the aide assistant backend.
//
// The gateway is a leaf: it shapes requests, validates response payloads
// against the backend contract, and converts every failure into one of two
// categories the rest of the client reasons about:
//
//   - RequestError: transport-level failure (unreachable host, timeout)
//   - APIError: the backend answered, but with an error status, a
//     success=false body, or a payload that violates the contract
//
// Reads (listing, history, memory, stats) are idempotent and retried with
// exponential backoff; commands (create, delete, exchange, memory writes)
// are sent exactly once. The exchange call runs under the caller's context
// with no additional timeout so a slow model reply is not aborted.
//
// # Key Types
//
//   - Client: pooled HTTP client with rate limiting and request ids
//   - ChatSummary: validated listing entry
//   - HistoryMessage: validated history entry
//
// # Usage
//
//	client := api.NewClient("http://localhost:8000/api")
//	chats, err := client.ListChats(ctx)
//	if api.IsNetworkFailure(err) {
//	    // degrade: backend unreachable
//	}
package api
