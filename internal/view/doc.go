// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view projects conversation state into render instructions.
//
// The projector is the read side of the state pipeline: it turns (store
// snapshot, current id, user memory, now) into plain value structs that a
// renderer can draw without touching domain state. It never mutates its
// inputs and never performs I/O, so the same inputs always produce the
// same projection.
//
// # Key Types
//
//   - ListEntry: One sidebar row (title, preview, relative time, active flag)
//   - Transcript: The main pane, tagged with a TranscriptState
//   - TranscriptState: empty / loading / welcome / messages
//
// # Usage
//
// Project the sidebar and the transcript for rendering:
//
//	now := time.Now()
//	entries := view.ProjectList(st.List(), currentID, now)
//	pane := view.ProjectTranscript(current, memory, now)
//
//	switch pane.State {
//	case view.TranscriptLoading:
//		// draw spinner
//	case view.TranscriptMessages:
//		// draw pane.Messages in order
//	}
package view
