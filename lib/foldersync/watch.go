// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"context"
)

// StartWatching begins the periodic change-detection pass. Fails with
// ErrNoFolder when no folder is bound; a second call while already
// watching is a no-op. When AutoSync is set, one full sync runs
// immediately before the ticker starts; its per-file errors are logged
// but do not fail the call.
//
// Each tick scans the local tree and compares it against the snapshot
// of the last sync: a new path, a removed path, a size change, or
// modification-time drift beyond the tolerance triggers a full
// SyncFolder. The store side is not re-listed on ticks; remote-only
// changes converge on the next full sync.
func (m *Manager) StartWatching(ctx context.Context) error {
	m.mu.Lock()
	if m.folder == "" {
		m.mu.Unlock()
		return ErrNoFolder
	}
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	cfg, _ := m.effectiveLocked()
	stop := make(chan struct{})
	done := make(chan struct{})
	m.watching = true
	m.stopWatch = stop
	m.watchDone = done
	m.mu.Unlock()

	if cfg.AutoSync {
		if _, err := m.SyncFolder(ctx); err != nil {
			m.logger.Warn("initial sync failed", "error", err)
		}
	}

	go m.watchLoop(ctx, stop, done)
	m.logger.Info("watching started", "interval", cfg.WatchInterval)
	return nil
}

// watchLoop runs until StopWatching closes stop or ctx is cancelled.
func (m *Manager) watchLoop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	m.mu.Lock()
	cfg, _ := m.effectiveLocked()
	m.mu.Unlock()

	ticker := m.clock.NewTicker(cfg.WatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.detectAndSync(ctx)
		}
	}
}

// detectAndSync is the cheap per-tick pass: one local scan compared
// against the snapshot, no store listing. Any detected change
// triggers a full SyncFolder. The pending counter covers the whole
// triggered sync for status reporting.
func (m *Manager) detectAndSync(ctx context.Context) {
	m.mu.Lock()
	folder := m.folder
	matcher := m.matcher
	snap := m.snap
	cfg, _ := m.effectiveLocked()
	m.mu.Unlock()

	if folder == "" {
		return
	}

	scan, err := scanLocal(folder, matcher)
	if err != nil {
		m.logger.Warn("change detection scan failed", "error", err)
		return
	}
	if !snap.changedSince(scan, cfg.TimestampTolerance) {
		return
	}

	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.pending--
		m.mu.Unlock()
	}()

	m.logger.Debug("local changes detected", "folder", folder)
	if _, err := m.SyncFolder(ctx); err != nil {
		m.logger.Warn("watch-triggered sync failed", "error", err)
	}
}

// StopWatching cancels the ticker and transitions back to bound-idle.
// A sync already in flight runs to completion. Safe to call when not
// watching. The snapshot is persisted so a restarted process does not
// begin with a spurious full sync.
func (m *Manager) StopWatching() {
	m.mu.Lock()
	if !m.watching {
		m.mu.Unlock()
		return
	}
	stop := m.stopWatch
	done := m.watchDone
	m.watching = false
	m.stopWatch = nil
	m.watchDone = nil
	folder := m.folder
	snap := m.snap
	m.mu.Unlock()

	close(stop)
	<-done

	if err := saveSnapshot(folder, snap); err != nil {
		m.logger.Warn("snapshot not persisted", "folder", folder, "error", err)
	}
	m.logger.Info("watching stopped", "folder", folder)
}
