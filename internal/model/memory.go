// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sort"

// Memory is the user-memory mapping maintained by the backend: opaque
// key/value facts the assistant has learned. The client treats it as
// read-only and replaces it wholesale after each successful exchange;
// it is never edited in place.
type Memory map[string]string

// SortedKeys returns the memory keys in lexical order for deterministic
// rendering of the welcome screen and CLI output.
func (m Memory) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the memory map. Snapshots handed to renderers
// are clones so a refresh never mutates what a view is reading.
func (m Memory) Clone() Memory {
	clone := make(Memory, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
