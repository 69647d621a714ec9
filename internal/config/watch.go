// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// watchDebounce is how long the watcher waits after the last change before
// reloading. Editors typically emit several write events per save.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads configuration when a config file changes on disk.
//
// The watcher observes the config directory rather than the files
// themselves: editors and atomic writers replace files by rename, which
// would otherwise silently detach a per-file watch.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(*Config)
	onError  func(error)

	mu      sync.Mutex
	pending map[string]time.Time // File path -> last change time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a config watcher. onReload is invoked with the freshly
// loaded config after every successful reload; it runs on the watcher
// goroutine and must not block.
func NewWatcher(onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		watcher:  fsw,
		debounce: watchDebounce,
		onReload: onReload,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	return w, nil
}

// WithErrorHandler sets a callback for reload failures. Without one,
// failures leave the previous config in place silently.
func (w *Watcher) WithErrorHandler(fn func(error)) *Watcher {
	w.onError = fn
	return w
}

// Watch starts watching the config directory for changes.
func (w *Watcher) Watch() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// isConfigEvent reports whether a filesystem event path refers to one of
// the config files this watcher cares about.
func isConfigEvent(path string) bool {
	switch filepath.Base(path) {
	case "config.toml", "config.json":
		return true
	}
	return false
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !isConfigEvent(event.Name) {
				continue
			}

			// Any mutation of a config file schedules a reload. Remove and
			// Rename count too: atomic writers replace the file, and a
			// deleted config means falling back to defaults.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// processPending fires reloads for settled changes.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			settled := false
			for path, changeTime := range w.pending {
				if now.Sub(changeTime) >= w.debounce {
					delete(w.pending, path)
					settled = true
				}
			}
			w.mu.Unlock()

			// One reload covers however many files settled this tick.
			if settled {
				w.reload()
			}
		}
	}
}

// reload loads the config from disk and publishes it on success.
func (w *Watcher) reload() {
	cfg, err := Load()
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	SetGlobal(cfg)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
