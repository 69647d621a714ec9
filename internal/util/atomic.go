// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// RELIABILITY: Config saves and exports must survive a crash mid-write.
//
// AtomicWriteFile replaces the target file with data using the
// temp-file-and-rename sequence: the bytes land in a hidden sibling file,
// are fsynced, and only then renamed over the target. A reader sees either
// the previous contents or the complete new contents, never a truncated
// mix, and the data is on disk before the rename makes it visible.
//
// Parent directories are created as needed. perm applies to the final file.
func AtomicWriteFile(p string, data []byte, perm os.FileMode) error {
	target, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("failed to resolve target path: %w", err)
	}
	d := filepath.Dir(target)
	if err := os.MkdirAll(d, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// The staging file must live next to the target: rename is only
	// atomic within a single filesystem.
	tmp, err := stageTempFile(d, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace target file: %w", err)
	}
	return nil
}

// stageTempFile writes data to a fresh hidden file in d, syncs it to
// disk, applies perm, and closes it. On success the caller owns the
// returned path; on error nothing is left behind.
func stageTempFile(d string, data []byte, perm os.FileMode) (string, error) {
	file, err := os.CreateTemp(d, ".tmp-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := file.Name()
	staged := false
	defer func() {
		if !staged {
			file.Close()
			os.Remove(name)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	// Flush before the rename publishes the file. Without the fsync a
	// crash shortly after a successful rename can surface an empty target.
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	// Permissions go on while the file is still hidden, so the target
	// never appears with CreateTemp's default 0600.
	if err := file.Chmod(perm); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	staged = true
	return name, nil
}
